package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/spaghettifunk/weightsync/engine/mesh"
	"github.com/spaghettifunk/weightsync/engine/operators"
	"github.com/spaghettifunk/weightsync/engine/scene"
	"github.com/spaghettifunk/weightsync/engine/weights"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	headerColor  = color.New(color.FgBlue, color.Bold)
	labelColor   = color.New(color.FgWhite, color.Bold)
	dimColor     = color.New(color.FgHiBlack)
)

// printStatus renders the weight sync panel.
func printStatus(w io.Writer, settings scene.SyncSettings, obj *mesh.Object) {
	st := operators.StatusOf(obj, settings)

	headerColor.Fprintln(w, "Weight Sync Manager")
	if !st.HasMesh {
		errorColor.Fprintln(w, "No mesh selected")
		return
	}

	labelColor.Fprint(w, "Object: ")
	fmt.Fprintln(w, st.ObjectName)
	if st.Linked {
		dimColor.Fprintf(w, "  linked from %s\n", st.Library)
	}
	if st.GroupCount > 0 {
		labelColor.Fprint(w, "Vertex Groups: ")
		fmt.Fprintln(w, st.GroupCount)
		labelColor.Fprint(w, "Vertices with weights: ")
		fmt.Fprintf(w, "%d / %d\n", st.WeightedVertices, st.VertexCount)
	}

	labelColor.Fprint(w, "Status: ")
	if st.Active {
		successColor.Fprintln(w, "Active")
		labelColor.Fprint(w, "File: ")
		fmt.Fprintln(w, st.FileName)
	} else {
		errorColor.Fprintln(w, "No file")
	}
}

// printDocument renders the validation summary of a weight file.
func printDocument(w io.Writer, name string, doc *weights.Document) {
	v := doc.Validate()
	headerColor.Fprintln(w, name)
	labelColor.Fprint(w, "Object: ")
	fmt.Fprintln(w, doc.ObjectName)
	labelColor.Fprint(w, "Vertex count: ")
	fmt.Fprintln(w, doc.VertexCount)
	labelColor.Fprint(w, "Groups: ")
	fmt.Fprintln(w, doc.GroupNames)
	labelColor.Fprint(w, "Vertices with weights: ")
	fmt.Fprintln(w, v.VerticesWithWeights)
	labelColor.Fprint(w, "Groups with weights: ")
	fmt.Fprintln(w, v.GroupsWithWeights)
	labelColor.Fprint(w, "Weight range: ")
	fmt.Fprintf(w, "%g to %g\n", v.WeightRange[0], v.WeightRange[1])
}
