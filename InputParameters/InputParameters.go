package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type SplineParameters struct {
	Title          string  `yaml:"Title"`
	Kernel         string  `yaml:"Kernel"`   // like "bspline:d=3" or "omoms:d=3"
	Boundary       string  `yaml:"Boundary"` // mirror, repeat or zero
	Field          string  `yaml:"Field"`    // reference field, see model_fields
	HalfSize       int     `yaml:"HalfSize"`
	Extent         float64 `yaml:"Extent"`
	DivWeight      float64 `yaml:"DivWeight"`
	CurlWeight     float64 `yaml:"CurlWeight"`
	ParallelDegree int     `yaml:"ParallelDegree"`
	Probes         int     `yaml:"Probes"`
	IntegerOutput  bool    `yaml:"IntegerOutput"`
	Lambda         float64 `yaml:"Lambda"`
	Noise          float64 `yaml:"Noise"`
	Seed           int64   `yaml:"Seed"`
	MaxIterations  int     `yaml:"MaxIterations"`
}

func NewSplineParameters(kernel string) *SplineParameters {
	return &SplineParameters{
		Title:          "Reference field",
		Kernel:         kernel,
		Boundary:       "mirror",
		Field:          "radial2d",
		HalfSize:       16,
		Extent:         4,
		DivWeight:      1,
		CurlWeight:     0,
		ParallelDegree: 1,
		Probes:         8,
		Lambda:         0.01,
		Noise:          0.05,
		Seed:           1,
		MaxIterations:  500,
	}
}

// Parse overlays the YAML document on the current values.
func (ip *SplineParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *SplineParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%s]\t\t= Kernel\n", ip.Kernel)
	fmt.Printf("[%s]\t\t= Boundary\n", ip.Boundary)
	fmt.Printf("[%s]\t\t= Field\n", ip.Field)
	fmt.Printf("[%d]\t\t\t= HalfSize\n", ip.HalfSize)
	fmt.Printf("%8.5f\t\t= Extent\n", ip.Extent)
	fmt.Printf("%8.5f\t\t= DivWeight\n", ip.DivWeight)
	fmt.Printf("%8.5f\t\t= CurlWeight\n", ip.CurlWeight)
	fmt.Printf("[%d]\t\t\t= ParallelDegree\n", ip.ParallelDegree)
}
