package pipelines

import (
	"context"
	"os"
	"path/filepath"

	"github.com/me/ligflow/internal/gmx"
	"github.com/me/ligflow/internal/graph"
	"github.com/me/ligflow/internal/workspace"
	"github.com/me/ligflow/pkg/model"
)

// SubmitProteinTopology records the protein topology generation: pdb2gmx over
// the input structure, with the system topology renamed to the
// forcefield-stemmed name downstream preparation steps address.
func SubmitProteinTopology(job *graph.Job, c *gmx.Context, pdbPath string, deps []*graph.Task) (*graph.Task, error) {
	return job.Submit(graph.SubmitSpec{
		Name: "protein-topology",
		Deps: deps,
		Run: func(ctx context.Context) error {
			topologyDir := filepath.Join(c.Workdir, "topology")
			files, err := c.GMX.ConvertPDBToGMX(ctx, pdbPath, topologyDir)
			if err != nil {
				return err
			}
			target := filepath.Join(c.Workdir, workspace.TopologyPath(workspace.KindProtein, c.ProteinFF))
			for _, f := range files {
				if filepath.Base(f) == "topol.top" {
					return os.Rename(f, target)
				}
			}
			return &model.LayoutError{Path: topologyDir, Msg: "pdb2gmx produced no system topology"}
		},
	})
}
