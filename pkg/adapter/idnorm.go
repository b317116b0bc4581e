// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package adapter

import (
	"fmt"
	"regexp"
	"strings"
)

// moduleIDPattern is the shape of a valid module ID: lowercase dot-separated
// segments, each starting with a letter.
var moduleIDPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z][a-z0-9_]*)*$`)

// ValidateModuleID reports whether id is a well-formed module ID.
func ValidateModuleID(id string) error {
	if !moduleIDPattern.MatchString(id) {
		return fmt.Errorf("invalid module ID %q: must match pattern ^[a-z][a-z0-9_]*(\\.[a-z][a-z0-9_]*)*$", id)
	}
	return nil
}

// NormalizeModuleID converts a dot-notation module ID into a name matching
// the ^[a-zA-Z0-9_-]+$ pattern required by function-calling catalogs, by
// replacing "." with "-".
//
// The mapping is bijective because valid module IDs cannot contain dashes.
func NormalizeModuleID(moduleID string) (string, error) {
	if err := ValidateModuleID(moduleID); err != nil {
		return "", err
	}
	return strings.ReplaceAll(moduleID, ".", "-"), nil
}

// DenormalizeToolName is the inverse of NormalizeModuleID: "-" back to ".".
func DenormalizeToolName(toolName string) string {
	return strings.ReplaceAll(toolName, "-", ".")
}
