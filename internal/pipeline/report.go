package pipeline

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/Faultbox/objminify/pkg/mesh"
)

// ModelInfo builds a tabular representation of a model: one row per mesh
// followed by a total.
func ModelInfo(model *mesh.Model) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Mesh", "Material", "Texture", "Size", "Faces", "Vertices"})

	for i, m := range model.Meshes {
		texture, size := "-", "-"
		if m.Material.Textured() {
			tex := m.Material.Texture
			texture = tex.Name
			size = fmt.Sprintf("%dx%d", tex.Width(), tex.Height())
		}
		vertices := 0
		for _, f := range m.Faces {
			vertices += len(f.Vertices)
		}
		table.Append([]string{
			strconv.Itoa(i),
			m.Material.Name,
			texture,
			size,
			strconv.Itoa(len(m.Faces)),
			strconv.Itoa(vertices),
		})
	}

	s := model.Stats()
	table.SetFooter([]string{
		"Total",
		fmt.Sprintf("%d materials", s.Materials),
		fmt.Sprintf("%d textures", s.Textures),
		" ",
		strconv.Itoa(s.Faces),
		strconv.Itoa(s.Vertices),
	})
	table.Render()
	return buf.String()
}

// BatchReport builds a table of job outcomes.
func BatchReport(sum *Summary) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Output", "Status", "Atlas", "Faces"})

	for _, res := range sum.Results {
		status, atlasSize, faces := "ok", "-", strconv.Itoa(res.Stats.Faces)
		switch {
		case res.Skipped:
			status, faces = "skipped", "-"
		case res.Err != nil:
			status, faces = "failed", "-"
		}
		if res.Layout != nil && len(res.Layout.Placements) > 0 {
			atlasSize = fmt.Sprintf("%dx%d", res.Layout.Size.X, res.Layout.Size.Y)
		}
		table.Append([]string{res.Job.Output, status, atlasSize, faces})
	}

	table.SetFooter([]string{
		"Run " + sum.RunID,
		fmt.Sprintf("%d ok, %d skipped, %d failed", sum.Processed, sum.Skipped, sum.Failed),
		" ",
		" ",
	})
	table.Render()
	return buf.String()
}
