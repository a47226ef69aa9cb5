// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "encoding/json"

// Course is a single entry of a structured advisor response, displayed as
// a card instead of prose.
type Course struct {
	CourseID    string `json:"courseID"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DecodeCourses parses a structured payload into its course list.
//
// A payload that is not valid JSON, or that decodes to something other
// than an array, returns an error; callers degrade the message to plain
// text rendering rather than dropping it. An empty JSON array is valid
// and yields zero courses.
func DecodeCourses(data string) ([]Course, error) {
	var courses []Course
	if err := json.Unmarshal([]byte(data), &courses); err != nil {
		return nil, err
	}
	return courses, nil
}
