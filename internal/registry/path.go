package registry

import "strings"

// IndexPath returns the path of a crate's file in a sparse index:
//
//	1/<name>          one character
//	2/<name>          two characters
//	3/<c>/<name>      three characters, c is the first
//	<ab>/<cd>/<name>  otherwise
//
// Names are lowercased.
func IndexPath(crate string) string {
	name := strings.ToLower(crate)

	switch len(name) {
	case 0:
		return ""
	case 1:
		return "1/" + name
	case 2:
		return "2/" + name
	case 3:
		return "3/" + name[:1] + "/" + name
	default:
		return name[:2] + "/" + name[2:4] + "/" + name
	}
}
