package models

// WorkflowState is a full snapshot of the workflow store.
type WorkflowState struct {
	Templates   []WorkflowTemplate
	Instances   []WorkflowInstance
	CurrentUser *User
}

// Clone returns a deep copy of the state.
func (s WorkflowState) Clone() WorkflowState {
	out := WorkflowState{
		Templates: make([]WorkflowTemplate, len(s.Templates)),
		Instances: make([]WorkflowInstance, len(s.Instances)),
	}
	for i, t := range s.Templates {
		out.Templates[i] = t.Clone()
	}
	for i, w := range s.Instances {
		out.Instances[i] = w.Clone()
	}
	if s.CurrentUser != nil {
		user := *s.CurrentUser
		out.CurrentUser = &user
	}
	return out
}

// TemplateIndex returns the position of the template with id, or -1.
func (s *WorkflowState) TemplateIndex(id string) int {
	for i := range s.Templates {
		if s.Templates[i].ID == id {
			return i
		}
	}
	return -1
}

// InstanceIndex returns the position of the instance with id, or -1.
func (s *WorkflowState) InstanceIndex(id string) int {
	for i := range s.Instances {
		if s.Instances[i].ID == id {
			return i
		}
	}
	return -1
}
