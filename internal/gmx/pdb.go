package gmx

import (
	"context"
	"path/filepath"

	"github.com/me/ligflow/internal/toolexec"
	"github.com/me/ligflow/internal/workspace"
)

// pdb2gmxOutputs are the files pdb2gmx writes into its working directory for
// a single-chain protein. The names are dictated by the tool.
var pdb2gmxOutputs = []string{
	"conf.gro",
	"topol.top",
	"topol_Protein.itp",
	"topol_Protein_chain_A.itp",
	"posre_Protein.itp",
	"posre_Protein_chain_A.itp",
}

// ConvertPDBToGMX generates conf.gro and topology files from a protein PDB
// file into outputDir and returns their absolute paths. A missing expected
// output is a LayoutError.
//
// TODO: generalize the water model and forcefield selection.
func (g *GMX) ConvertPDBToGMX(ctx context.Context, pdbPath, outputDir string) ([]string, error) {
	dir, err := workspace.EnsureDir(outputDir, false)
	if err != nil {
		return nil, err
	}

	err = g.Execute(ctx, []any{
		"pdb2gmx",
		"-f", toolexec.Path(pdbPath),
		"-renum",
		"-ignh",
		"-water", "tip3p",
		"-ff", "amber99sb-ildn",
	}, &toolexec.Options{Dir: dir})
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(pdb2gmxOutputs))
	for _, name := range pdb2gmxOutputs {
		path := filepath.Join(dir, name)
		if err := workspace.CheckFile(path); err != nil {
			return nil, err
		}
		files = append(files, path)
	}
	return files, nil
}
