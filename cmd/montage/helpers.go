package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"montage/internal/canvas"
)

var titleCaser = cases.Title(language.English)

// shaderDisplayName turns a shader identifier into a human-readable label,
// e.g. "three_d_glasses" -> "Three D Glasses".
func shaderDisplayName(shader canvas.Shader) string {
	return titleCaser.String(strings.ReplaceAll(string(shader), "_", " "))
}

func parseCollageID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(arg))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid collage id %q: %w", arg, err)
	}
	return id, nil
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04")
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
