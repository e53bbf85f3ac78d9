package types

import (
	"fmt"
	"strconv"
	"strings"
)

type KernelFamily uint8

const (
	KF_None KernelFamily = iota
	KF_BSpline
	KF_OMoms
)

var KernelNameMap = map[string]KernelFamily{
	"bspline": KF_BSpline,
	"omoms":   KF_OMoms,
}

func (kf KernelFamily) Name() string {
	for name, f := range KernelNameMap {
		if f == kf {
			return name
		}
	}
	return "none"
}

// KernelType identifies an interpolation kernel. Two kernels with equal
// KernelType produce bit identical weights.
type KernelType struct {
	Family KernelFamily
	Degree int
}

func (kt KernelType) String() string {
	return fmt.Sprintf("%s:d=%d", kt.Family.Name(), kt.Degree)
}

// ParseKernelType reads descriptors like "bspline:d=3" or "omoms:d=3". A bare
// family name selects degree 3.
func ParseKernelType(desc string) (kt KernelType, err error) {
	var (
		name, params, _ = strings.Cut(strings.TrimSpace(desc), ":")
		ok              bool
	)
	kt.Degree = 3
	if kt.Family, ok = KernelNameMap[strings.ToLower(name)]; !ok {
		err = fmt.Errorf("%w: unknown kernel family %q", ErrInvalidKernelParameter, name)
		return
	}
	if params == "" {
		return
	}
	for _, param := range strings.Split(params, ",") {
		key, val, found := strings.Cut(param, "=")
		if !found || strings.TrimSpace(key) != "d" {
			err = fmt.Errorf("%w: bad kernel parameter %q", ErrInvalidKernelParameter, param)
			return
		}
		if kt.Degree, err = strconv.Atoi(strings.TrimSpace(val)); err != nil {
			err = fmt.Errorf("%w: degree %q: %v", ErrInvalidKernelParameter, val, err)
			return
		}
	}
	return
}
