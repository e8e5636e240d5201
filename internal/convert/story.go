package convert

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/verkaro/bigif/bigif"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// storyConverter compiles an interactive story written in biff into a single
// page. Every knot becomes an anchored section and every choice a link to
// the section it leads to. Knot bodies may use EditML.
type storyConverter struct {
	md *markdownConverter
}

type compiledStory struct {
	Metadata map[string]string `json:"metadata"`
	Graph    struct {
		Nodes map[string]*bigif.StoryNode `json:"nodes"`
	} `json:"graph"`
}

var knotHeader = regexp.MustCompile(`^\s*===\s*([\w-]+)\s*===\s*$`)

func (c storyConverter) Convert(_ context.Context, src []byte) (Result, error) {
	knots, order, err := knotComments(src)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read knot comments: %w", err)
	}

	compiled, err := bigif.Compile(string(src))
	if err != nil {
		return Result{}, fmt.Errorf("biff syntax error: %w", err)
	}
	var story compiledStory
	if err := json.Unmarshal(compiled, &story); err != nil {
		return Result{}, fmt.Errorf("failed to decode compiled story: %w", err)
	}

	ids := orderNodes(story.Graph.Nodes, order)
	anchors := anchorIDs(ids)

	var md strings.Builder
	for _, id := range ids {
		node := story.Graph.Nodes[id]
		title, body := knotTitle(node.KnotName, node.Content, knots[node.KnotName])
		clean, err := cleanView(body)
		if err != nil {
			return Result{}, fmt.Errorf("knot %s: %w", node.KnotName, err)
		}

		fmt.Fprintf(&md, "<div id=\"%s\">\n\n## %s\n\n%s\n\n", anchors[id], title, clean)
		for _, edge := range node.Edges {
			if target, ok := anchors[edge.TargetNodeID]; ok {
				fmt.Fprintf(&md, "* [%s](#%s)\n", edge.Text, target)
			}
		}
		md.WriteString("\n</div>\n\n")
	}

	out, err := c.md.render([]byte(md.String()))
	if err != nil {
		return Result{}, err
	}
	return Result{HTML: out, Meta: storyMetadata(story.Metadata)}, nil
}

// knotComments collects "// key: value" comments per knot and the order in
// which knots appear in the source.
func knotComments(src []byte) (map[string]map[string]string, []string, error) {
	data := make(map[string]map[string]string)
	var order []string
	var current string

	scanner := bufio.NewScanner(bytes.NewReader(src))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if m := knotHeader.FindStringSubmatch(line); m != nil {
			current = m[1]
			if data[current] == nil {
				data[current] = make(map[string]string)
				order = append(order, current)
			}
			continue
		}
		if current == "" || !strings.HasPrefix(line, "//") {
			continue
		}
		key, value, ok := strings.Cut(strings.TrimSpace(strings.TrimPrefix(line, "//")), ":")
		if ok {
			data[current][strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
		}
	}
	return data, order, scanner.Err()
}

// orderNodes lists node ids by the position of their knot in the source,
// then by id.
func orderNodes(nodes map[string]*bigif.StoryNode, knotOrder []string) []string {
	rank := make(map[string]int, len(knotOrder))
	for i, k := range knotOrder {
		rank[k] = i
	}
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ri, iok := rank[nodes[ids[i]].KnotName]
		rj, jok := rank[nodes[ids[j]].KnotName]
		if iok != jok {
			return iok
		}
		if ri != rj {
			return ri < rj
		}
		return ids[i] < ids[j]
	})
	return ids
}

var nonAnchor = regexp.MustCompile(`[^a-z0-9_-]+`)

func anchorIDs(ids []string) map[string]string {
	anchors := make(map[string]string, len(ids))
	used := make(map[string]bool, len(ids))
	for _, id := range ids {
		base := "knot-" + strings.Trim(nonAnchor.ReplaceAllString(strings.ToLower(id), "-"), "-")
		a := base
		for n := 2; used[a]; n++ {
			a = fmt.Sprintf("%s-%d", base, n)
		}
		used[a] = true
		anchors[id] = a
	}
	return anchors
}

// knotTitle picks the knot title from its "// title:" comment, then from a
// leading "# " line, then from the knot name. The "# " line is removed from
// the body.
func knotTitle(name, content string, meta map[string]string) (string, string) {
	title := meta["title"]
	var heading string
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if heading == "" && strings.HasPrefix(trimmed, "# ") {
			heading = strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
			continue
		}
		lines = append(lines, line)
	}
	if title == "" {
		title = heading
	}
	if title == "" {
		title = cases.Title(language.English).String(strings.NewReplacer("_", " ", "-", " ").Replace(name))
	}
	return title, strings.TrimSpace(strings.Join(lines, "\n"))
}

func storyMetadata(m map[string]string) *Metadata {
	meta := &Metadata{Title: strings.TrimSpace(m["title"]), Summary: strings.TrimSpace(m["description"])}
	if meta.Title == "" && meta.Summary == "" {
		return nil
	}
	return meta
}
