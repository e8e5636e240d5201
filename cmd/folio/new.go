package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"folio/internal/scaffold"
)

// NewCmd groups the scaffolding commands.
type NewCmd struct {
	Site NewSiteCmd `cmd:"" help:"Create a new site."`
	Post NewPostCmd `cmd:"" help:"Create a new post in a category."`
}

// NewSiteCmd implements 'new site'.
type NewSiteCmd struct {
	Dir string `arg:"" help:"Directory for the new site."`
}

func (c *NewSiteCmd) Run() error {
	if err := scaffold.CreateNewSite(c.Dir); err != nil {
		return err
	}
	fmt.Println("Site scaffolded. You can now:")
	fmt.Println("  cd", c.Dir)
	fmt.Println("  folio watch")
	return nil
}

// NewPostCmd implements 'new post'. An empty category creates a root page.
type NewPostCmd struct {
	Category string `arg:"" help:"Category folder, or \"\" for a root page."`
	Title    string `arg:"" help:"Post title."`
}

func (c *NewPostCmd) Run(_ context.Context, root *CLI) error {
	site, err := loadSite(root.Config)
	if err != nil {
		return err
	}
	if site.ContentDir, err = filepath.Abs(site.ContentDir); err != nil {
		return err
	}
	path, err := scaffold.CreateNewContent(filepath.Dir(root.Config), site, c.Category, c.Title, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "Created:", path)
	return nil
}
