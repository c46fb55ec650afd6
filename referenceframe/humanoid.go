package referenceframe

import (
	"github.com/golang/geo/r3"

	"go.viam.com/articulate/spatialmath"
)

// HumanoidRightHand is the end effector of the humanoid arm.
const HumanoidRightHand = "right_hand"

type humanoidBody struct {
	name               string
	translation, scale r3.Vector
}

type humanoidJoint struct {
	name          string
	parent, child string
	location      r3.Vector
	axes          AxisSet
}

var (
	humanoidBodies = []humanoidBody{
		{"torso", r3.Vector{}, r3.Vector{X: 1, Y: 2.5, Z: 0.5}},
		{"head", r3.Vector{Y: 0.6}, r3.Vector{X: 0.6, Y: 0.6, Z: 0.6}},
		{"ru_arm", r3.Vector{X: 1.2}, r3.Vector{X: 1.2, Y: 0.2, Z: 0.2}},
		{"rl_arm", r3.Vector{X: 1}, r3.Vector{X: 1, Y: 0.2, Z: 0.2}},
		{"r_hand", r3.Vector{X: 0.4}, r3.Vector{X: 0.4, Y: 0.3, Z: 0.2}},
	}
	humanoidJoints = []humanoidJoint{
		{"root", "", "torso", r3.Vector{Y: 5}, AxisSet{}},
		{"neck", "torso", "head", r3.Vector{Y: 2.5}, AxisSet{}},
		{"r_shoulder", "torso", "ru_arm", r3.Vector{X: 0.6, Y: 2}, AxisSet{X: true, Y: true, Z: true}},
		{"r_elbow", "ru_arm", "rl_arm", r3.Vector{X: 2.4}, AxisSet{X: true, Y: true}},
		{"r_wrist", "rl_arm", "r_hand", r3.Vector{X: 2}, AxisSet{X: true, Z: true}},
	}
)

// NewHumanoidArm returns a torso with a head and a seven degree of freedom right arm: a shoulder rotating
// about every axis, an elbow about x and y and a wrist about x and z. The right_hand end effector sits
// past the wrist.
func NewHumanoidArm() (*Chain, error) {
	chain := NewChain("humanoid_arm")
	for _, b := range humanoidBodies {
		local := spatialmath.NewTranslation(b.translation).Mul4(spatialmath.NewScale(b.scale))
		if _, err := chain.AddBody(NewRigidBody(b.name, "sphere", local)); err != nil {
			return nil, err
		}
	}
	for _, j := range humanoidJoints {
		parent := NoBody
		if j.parent != "" {
			parent = chain.bodyNames[j.parent]
		}
		if _, err := chain.AddJoint(j.name, parent, chain.bodyNames[j.child], spatialmath.NewTranslation(j.location), j.axes); err != nil {
			return nil, err
		}
	}
	wrist := chain.jointNames["r_wrist"]
	if err := chain.AttachEndEffector(wrist, HumanoidRightHand, r3.Vector{X: 0.8}); err != nil {
		return nil, err
	}
	return chain, nil
}
