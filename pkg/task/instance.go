package task

// Instance is a single question, e.g. an image instance in a machine
// learning labeling task.
type Instance struct {
	TrueLabel     int
	AssignedLabel int  // label assigned by the worker
	Labeled       bool // whether the worker has answered this instance yet
}

// Assign records the label the worker gave this instance.
func (in *Instance) Assign(label int) {
	in.AssignedLabel = label
	in.Labeled = true
}
