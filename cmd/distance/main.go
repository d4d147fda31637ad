package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/samirrijal/airportdist/internal/pkg/geospatial"
)

const usage = "usage: distance <lon1> <lat1> <lon2> <lat2>"

func main() {
	if len(os.Args) != 5 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	var v [4]float64
	for i, arg := range os.Args[1:] {
		f, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "argument %d: %v\n%s\n", i+1, err, usage)
			os.Exit(2)
		}
		v[i] = f
	}

	d, err := geospatial.DistanceKm(v[0], v[1], v[2], v[3])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("%.1f km\n", d)
}
