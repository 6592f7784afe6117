// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package predefined

import (
	"fmt"
	"regexp"
)

// MaxKeyNameLength bounds property and predefined key names.
const MaxKeyNameLength = 255

var keyNamePattern = regexp.MustCompile(`^[a-zA-Z_ 0-9.\-:@/]*$`)

// CheckKeyName validates a property key name. It returns a human readable
// reason, or "" when the name is acceptable.
func CheckKeyName(name string) string {
	switch {
	case name == "":
		return "cannot be empty"
	case len(name) > MaxKeyNameLength:
		return fmt.Sprintf("exceeds maximum length of %d", MaxKeyNameLength)
	case !keyNamePattern.MatchString(name):
		return "may only contain letters, digits, spaces and _ . - : @ /"
	default:
		return ""
	}
}
