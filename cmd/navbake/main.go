// navbake writes a navmesh in the binary MSET set format the game server
// loads at boot. By default it bakes the L-shaped obstacle-course map; with
// -flat it bakes an open rectangular plane instead. A real exporter would
// replace this tool, not the format.
//
// Usage:
//
//	go run ./cmd/navbake -out dummy_map.bin
//	go run ./cmd/navbake -out flat.bin -flat -width 1000 -height 1000
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gridgate/server/internal/nav"
)

func main() {
	out := flag.String("out", "dummy_map.bin", "output file")
	flat := flag.Bool("flat", false, "bake an open plane instead of the obstacle course")
	width := flag.Float64("width", 1000, "plane width in world units (with -flat)")
	height := flag.Float64("height", 1000, "plane height in world units (with -flat)")
	flag.Parse()

	mesh := nav.BakeObstacleCourse()
	if *flat {
		mesh = nav.BakeDummy(float32(*width), float32(*height))
	}
	if err := nav.WriteFile(*out, mesh); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote navmesh (%d polygons) to %s\n", len(mesh.Polygons), *out)
}
