package gmx

import "github.com/me/ligflow/internal/workspace"

// groAtomRenames reconciles the hydrogen and water atom names written by the
// structure-preparation tool with the names the GROMACS forcefield expects.
// The table is applied verbatim, in this order; it is an external contract
// shared with the downstream topology files.
var groAtomRenames = []workspace.Replacement{
	{Before: "1HD1", After: "HD11"},
	{Before: "2HD1", After: "HD12"},
	{Before: "3HD1", After: "HD13"},
	{Before: "1HD2", After: "HD21"},
	{Before: "2HD2", After: "HD22"},
	{Before: "3HD2", After: "HD23"},
	{Before: "1HE2", After: "HE21"},
	{Before: "2HE2", After: "HE22"},
	{Before: "1HG1", After: "HG11"},
	{Before: "2HG1", After: "HG12"},
	{Before: "3HG1", After: "HG13"},
	{Before: "1HG2", After: "HG21"},
	{Before: "2HG2", After: "HG22"},
	{Before: "3HG2", After: "HG23"},
	{Before: "1HH1", After: "HH11"},
	{Before: "2HH1", After: "HH12"},
	{Before: "1HH2", After: "HH21"},
	{Before: "2HH2", After: "HH22"},
	{Before: "1HH3", After: "HH31"},
	{Before: "2HH3", After: "HH32"},
	{Before: "3HH3", After: "HH33"},
	{Before: "HOH      O", After: "HOH     OW"},
	{Before: "HOH     H1", After: "HOH    HW1"},
	{Before: "HOH     H2", After: "HOH    HW2"},
}

// ModifyGroInPlace applies the fixed atom-rename table to a structure file.
// Must run before the file is fed to grompp.
func ModifyGroInPlace(path string) error {
	return workspace.ReplaceInPlace(path, groAtomRenames)
}
