package types

import "fmt"

// Mode represents the current input mode of the TUI
type Mode int

const (
	// Normal is the default mode for navigation and selection
	Normal Mode = iota
	// Prompt is the mode for entering a name or pattern
	Prompt
	// Confirm is the mode for yes/no questions before destructive work
	Confirm
	// Conflict is the mode while an operation waits for a collision decision
	Conflict
	// Drives is the mode for picking a mount point
	Drives
)

// PanelID identifies one of the two panels
type PanelID int

const (
	// LeftPanel is the panel on the left side of the screen
	LeftPanel PanelID = iota
	// RightPanel is the panel on the right side of the screen
	RightPanel
)

// Other returns the opposite panel
func (p PanelID) Other() PanelID {
	if p == LeftPanel {
		return RightPanel
	}
	return LeftPanel
}

// String returns the panel name
func (p PanelID) String() string {
	if p == LeftPanel {
		return "left"
	}
	return "right"
}

// SortKey selects the attribute a panel orders its entries by
type SortKey int

const (
	SortByName SortKey = iota
	SortBySize
	SortByDate
	SortByExtension
)

var sortKeyNames = map[SortKey]string{
	SortByName:      "name",
	SortBySize:      "size",
	SortByDate:      "date",
	SortByExtension: "ext",
}

// String returns the config name of the key
func (k SortKey) String() string {
	if name, ok := sortKeyNames[k]; ok {
		return name
	}
	return "name"
}

// Next cycles to the following sort key
func (k SortKey) Next() SortKey {
	return (k + 1) % SortKey(len(sortKeyNames))
}

// ParseSortKey converts a config name into a SortKey
func ParseSortKey(name string) (SortKey, error) {
	for k, n := range sortKeyNames {
		if n == name {
			return k, nil
		}
	}
	return SortByName, fmt.Errorf("unknown sort key: %s", name)
}
