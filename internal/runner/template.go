package runner

import "strings"

// PackagesPlaceholder is the token in a manager command template that is
// replaced by the space-joined package list.
const PackagesPlaceholder = "{{packages}}"

// ExpandPackages substitutes the package list into a manager command
// template. A template without the placeholder runs as-is. ok is false when
// the template needs packages and none were given, meaning there is nothing
// to run.
func ExpandPackages(template string, packages []string) (command string, ok bool) {
	if !strings.Contains(template, PackagesPlaceholder) {
		return template, true
	}
	if len(packages) == 0 {
		return "", false
	}
	return strings.ReplaceAll(template, PackagesPlaceholder, strings.Join(packages, " ")), true
}
