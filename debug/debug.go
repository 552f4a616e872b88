package debug

import (
	"os"
	"strconv"
)

type debug struct {
	Extract  bool
	Validate bool
	Codec    bool
}

var d *debug

func init() {
	d = &debug{}
	d.Extract = boolEnv("EURE_DEBUG_EXTRACT")
	d.Validate = boolEnv("EURE_DEBUG_VALIDATE")
	d.Codec = boolEnv("EURE_DEBUG_CODEC")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Extract() bool {
	return d.Extract
}
func Validate() bool {
	return d.Validate
}
func Codec() bool {
	return d.Codec
}
