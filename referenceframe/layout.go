package referenceframe

// AngleRange is the half-open range [Start, End) of theta owned by one joint.
type AngleRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of angles in the range.
func (r AngleRange) Len() int {
	return r.End - r.Start
}

// ThetaLayout maps joint names to their range of theta.
type ThetaLayout map[string]AngleRange

// Layout returns where each joint's angles live in theta. Theta is the concatenation of joint angles in
// joint declaration order, so reordering joints reorders theta; address angles by joint name through
// the layout instead of by position.
func (c *Chain) Layout() ThetaLayout {
	layout := make(ThetaLayout, len(c.joints))
	for _, j := range c.joints {
		layout[j.name] = AngleRange{Start: j.thetaStart, End: j.thetaStart + j.DoF()}
	}
	return layout
}

// ThetaFromJointAngles returns the current theta with the angles of the named joints replaced.
func (c *Chain) ThetaFromJointAngles(angles map[string][]float64) ([]float64, error) {
	theta := c.Theta()
	for name, values := range angles {
		id, ok := c.jointNames[name]
		if !ok {
			return nil, NewJointNotFoundError(name)
		}
		j := c.joints[id]
		if len(values) != j.DoF() {
			return nil, NewDimensionMismatchError(len(values), j.DoF())
		}
		copy(theta[j.thetaStart:], values)
	}
	return theta, nil
}

// JointAngles returns the current angles of each joint keyed by joint name.
func (c *Chain) JointAngles() map[string][]float64 {
	out := make(map[string][]float64, len(c.joints))
	for _, j := range c.joints {
		out[j.name] = append([]float64{}, c.theta[j.thetaStart:j.thetaStart+j.DoF()]...)
	}
	return out
}

// SetJointAngles applies new angles to a single named joint.
func (c *Chain) SetJointAngles(name string, angles []float64) error {
	theta, err := c.ThetaFromJointAngles(map[string][]float64{name: angles})
	if err != nil {
		return err
	}
	return c.Apply(theta)
}
