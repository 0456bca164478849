package policy

// Record is the host-side view of an entity owning the UUID attribute.
type Record interface {
	// IsNewRecord reports whether the pending write is an insert.
	IsNewRecord() bool
	// Get returns the current attribute value, empty when unset.
	Get(attribute string) string
	// Set assigns a literal string.
	Set(attribute, value string)
	// SetExpr assigns a raw expression that must reach the engine unquoted.
	SetExpr(attribute, expr string)
}

// Ensure applies the policy to rec, writing back at most one value through
// the accessor, and returns the Action taken.
func (p *Policy) Ensure(rec Record) Action {
	action := p.Apply(rec.Get(p.attribute), rec.IsNewRecord())
	switch action.Kind {
	case SetLiteral:
		rec.Set(p.attribute, action.Value)
	case SetDeferred:
		rec.SetExpr(p.attribute, action.Value)
	}
	return action
}
