package model

// View is a dump view: its DDL and pre-DDL script readiness.
type View struct {
	Schema   string
	Name     string
	Basename string

	SQLSeen    bool
	SQLPreSeen bool
}

// Ready reports whether both the view's pre-script and script have been observed.
func (v *View) Ready() bool {
	return v.SQLSeen && v.SQLPreSeen
}
