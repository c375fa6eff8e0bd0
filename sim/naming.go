package sim

import (
	"fmt"
	"regexp"
)

// A Named object is an object that has a name.
type Named interface {
	Name() string
}

var namePattern = regexp.MustCompile(
	`^[A-Za-z0-9_]+(\[\d+\])*(\.[A-Za-z0-9_]+(\[\d+\])*)*$`)

// NameMustBeValid panics if the name is not a valid element name. Valid names
// are dot-separated tokens, where each token can carry index suffixes, e.g.,
// "Network.Router[1].Port[2]".
func NameMustBeValid(name string) {
	if !namePattern.MatchString(name) {
		panic(fmt.Sprintf("invalid name %q", name))
	}
}
