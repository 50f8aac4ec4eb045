package planner

// SpeedModel maps local clearance to a recommended flight speed. At or
// below ClearanceLo the drone holds VMin, at or above ClearanceHi it may
// cruise at VMax, and between the two the recommendation is linear.
type SpeedModel struct {
	VMin        float64 `json:"vMin"`        // m/s floor near obstacles
	VMax        float64 `json:"vMax"`        // m/s cruise ceiling
	ClearanceLo float64 `json:"clearanceLo"` // meters
	ClearanceHi float64 `json:"clearanceHi"` // meters
}

// DefaultSpeedModel matches a mid-size quadcopter in an urban canyon.
func DefaultSpeedModel() SpeedModel {
	return SpeedModel{VMin: 4.0, VMax: 20.0, ClearanceLo: 5.0, ClearanceHi: 40.0}
}

// SpeedAt returns the recommended speed for the given clearance in meters.
func (m SpeedModel) SpeedAt(clearance float64) float64 {
	if m.ClearanceHi <= m.ClearanceLo {
		return m.VMax
	}
	if clearance <= m.ClearanceLo {
		return m.VMin
	}
	if clearance >= m.ClearanceHi {
		return m.VMax
	}
	frac := (clearance - m.ClearanceLo) / (m.ClearanceHi - m.ClearanceLo)
	return m.VMin + (m.VMax-m.VMin)*frac
}
