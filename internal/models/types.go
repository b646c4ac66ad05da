package models

import (
	"fmt"
	"strings"
)

type Layout string

const (
	LayoutSidebar   Layout = "sidebar"
	LayoutWizard    Layout = "wizard"
	LayoutDashboard Layout = "dashboard"
)

var Layouts = []Layout{LayoutSidebar, LayoutWizard, LayoutDashboard}

func ParseLayout(s string) (Layout, error) {
	l := Layout(strings.ToLower(strings.TrimSpace(s)))
	switch l {
	case LayoutSidebar, LayoutWizard, LayoutDashboard:
		return l, nil
	}
	return "", fmt.Errorf("unknown layout: %q", s)
}

func (l Layout) Title() string {
	switch l {
	case LayoutWizard:
		return "Guided Wizard"
	case LayoutDashboard:
		return "Dashboard Overview"
	default:
		return "Sidebar Navigation"
	}
}
