// Package planfile extracts task items from plan documents. Two formats are
// supported: JSON plans and markdown checklists. Only checkbox lines become
// tasks; numbered lists, headers, and prose never do, so design notes cannot
// turn into blocking items.
package planfile

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmelton/plangate/internal/types"
)

// Document is a parsed plan file.
type Document struct {
	Name        string
	Description string
	Items       []types.TaskItem
	Format      string
}

var (
	checkboxRe = regexp.MustCompile(`^[-*]\s*\[([ xX~])\]\s*(.+)$`)
	headerRe   = regexp.MustCompile(`^###?\s*(.+)$`)
	titleRe    = regexp.MustCompile(`(?m)^#\s+(?:Plan:?\s*)?(.+)$`)

	// templateContextRe marks prose that introduces template or category
	// checklists; checkboxes under such prose are reference material.
	templateContextRe = regexp.MustCompile(`(?i)(document findings|for each module|categories|template|what to look for|audit each)`)
)

// nonActionableSectionKeywords mark section headers whose checkbox items are
// templates, categories, or audit references rather than actionable tasks.
var nonActionableSectionKeywords = []string{
	"template",
	"categories",
	"what to look for",
	"per-module",
	"checklist items",
	"audit each module",
	"performance issues",
	"consistency issues",
	"security issues",
	"maintainability issues",
	"cross-cutting concerns",
	"shared libraries",
	"shared components",
	"api routes",
	"/lib",
	"/components",
	"/api",
}

// IsPlanPath reports whether the path looks like a tracked plan document:
// a .json or .md file under a plans directory.
func IsPlanPath(path string) bool {
	ext := filepath.Ext(path)
	if ext != ".json" && ext != ".md" {
		return false
	}
	norm := filepath.ToSlash(path)
	return strings.Contains(norm, "/plans/") || strings.Contains(norm, ".claude/plans")
}

// Parse dispatches on the file extension.
func Parse(path string, content []byte) (*Document, error) {
	if filepath.Ext(path) == ".json" {
		return parseJSON(content)
	}
	return parseMarkdown(content), nil
}

type jsonPlan struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Items       []types.TaskItem `json:"items"`
}

func parseJSON(content []byte) (*Document, error) {
	var plan jsonPlan
	if err := json.Unmarshal(content, &plan); err != nil {
		return nil, fmt.Errorf("cannot decode plan JSON: %w", err)
	}
	doc := &Document{
		Name:        plan.Name,
		Description: plan.Description,
		Items:       plan.Items,
		Format:      "json",
	}
	if doc.Name == "" {
		doc.Name = "Unnamed Plan"
	}
	// Assign missing ids and default statuses so downstream code never
	// sees zero-valued items.
	nextID := 0
	for i := range doc.Items {
		if doc.Items[i].ID > nextID {
			nextID = doc.Items[i].ID
		}
	}
	for i := range doc.Items {
		if doc.Items[i].ID == 0 {
			nextID++
			doc.Items[i].ID = nextID
		}
		if doc.Items[i].Status == "" {
			doc.Items[i].Status = types.StatusPending
		}
	}
	return doc, nil
}

// frontmatter is the optional YAML block at the top of a markdown plan.
type frontmatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

func parseMarkdown(content []byte) *Document {
	text := string(content)
	doc := &Document{Format: "markdown"}

	if fm, body := splitFrontmatter(text); fm != nil {
		doc.Name = fm.Name
		doc.Description = fm.Description
		text = body
	}

	var currentSection string
	templateContext := false
	id := 0

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		if m := headerRe.FindStringSubmatch(line); m != nil {
			currentSection = strings.TrimSpace(m[1])
			templateContext = false
			continue
		}

		if templateContextRe.MatchString(line) {
			templateContext = true
		}

		m := checkboxRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		id++
		glyph := strings.ToLower(m[1])
		status := types.StatusPending
		if glyph == "x" {
			status = types.StatusCompleted
		}

		item := types.TaskItem{
			ID:      id,
			Task:    strings.TrimSpace(m[2]),
			Status:  status,
			Section: currentSection,
		}
		// Non-actionable if: explicit [~] glyph, template context prose,
		// or a template/category section header.
		if glyph == "~" || templateContext || isNonActionableSection(currentSection) {
			item.Actionable = types.NonActionable()
		}
		doc.Items = append(doc.Items, item)
	}

	if doc.Name == "" {
		if m := titleRe.FindStringSubmatch(text); m != nil {
			doc.Name = strings.TrimSpace(m[1])
		} else {
			doc.Name = "Unnamed Plan"
		}
	}
	return doc
}

func splitFrontmatter(text string) (*frontmatter, string) {
	if !strings.HasPrefix(text, "---") {
		return nil, text
	}
	end := strings.Index(text[3:], "---")
	if end == -1 {
		return nil, text
	}
	var fm frontmatter
	if err := yaml.Unmarshal([]byte(text[3:3+end]), &fm); err != nil {
		return nil, text
	}
	return &fm, text[3+end+3:]
}

func isNonActionableSection(section string) bool {
	if section == "" {
		return false
	}
	lower := strings.ToLower(section)
	for _, keyword := range nonActionableSectionKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// PreserveStatuses carries completed statuses forward when the same plan
// file is re-parsed: an item the file still lists as pending stays completed
// if the stored plan already completed it.
func PreserveStatuses(doc *Document, existing *types.PlanState) {
	if existing == nil {
		return
	}
	known := make(map[string]types.Status, len(existing.Items))
	for _, item := range existing.Items {
		known[strings.ToLower(item.Task)] = item.Status
	}
	for i := range doc.Items {
		prev, ok := known[strings.ToLower(doc.Items[i].Task)]
		if ok && doc.Items[i].Status == types.StatusPending && prev.IsTerminal() {
			doc.Items[i].Status = prev
		}
	}
}
