/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gerddie/mia-sub002/InputParameters"
)

const exampleFile = `
########################################
Title: "Radial field"
Kernel: bspline:d=3
Field: radial2d # gauss2d, radial2d, radial3d, mixed3d
HalfSize: 16
Extent: 4
DivWeight: 1
CurlWeight: 0
########################################
`

func addInputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("inputConditionsFile", "I", "",
		"YAML file for input parameters, for example:"+exampleFile)
}

// readParameters starts from the defaults and overlays the input file when
// one is given.
func readParameters(cmd *cobra.Command) (ip *InputParameters.SplineParameters, err error) {
	var (
		fileName string
		data     []byte
	)
	ip = InputParameters.NewSplineParameters(viper.GetString("kernel"))
	if fileName, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
		return
	}
	if len(fileName) == 0 {
		return
	}
	if data, err = os.ReadFile(fileName); err != nil {
		return
	}
	if err = ip.Parse(data); err != nil {
		err = fmt.Errorf("reading %s: %w", fileName, err)
	}
	return
}
