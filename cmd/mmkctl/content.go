package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/target/mmk-ui-client/internal/domain/model"
)

func runCategories(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("categories", flag.ContinueOnError)
	var q model.CategoryQuery
	fs.IntVar(&q.Page, "page", 0, "Page number")
	fs.IntVar(&q.Limit, "limit", 0, "Page size")
	fs.StringVar(&q.Search, "search", "", "Name search")
	fs.StringVar(&q.Sort, "sort", "", "Sort field")
	order := fs.String("order", "", "Sort order: asc or desc")
	active := fs.String("active", "", "Filter by active flag: true or false")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if q.Order, err = parseOrder(*order); err != nil {
		return err
	}
	if q.IsActive, err = parseTriState("active", *active); err != nil {
		return err
	}
	return cc.emit(cc.Clients.Categories.GetCategories(cc.Ctx, q))
}

func runCategory(cc *commandContext, args []string) error {
	id, err := parseWithID(flag.NewFlagSet("category", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	return cc.emit(cc.Clients.Categories.GetCategory(cc.Ctx, id))
}

func runCategoryCreate(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("category-create", flag.ContinueOnError)
	in := bindCategoryFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	return cc.emit(cc.Clients.Categories.CreateCategory(cc.Ctx, in(visited(fs))))
}

func runCategoryUpdate(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("category-update", flag.ContinueOnError)
	in := bindCategoryFlags(fs)
	id, err := parseWithID(fs, args)
	if err != nil {
		return err
	}
	return cc.emit(cc.Clients.Categories.UpdateCategory(cc.Ctx, id, in(visited(fs))))
}

func runCategoryDelete(cc *commandContext, args []string) error {
	id, err := parseWithID(flag.NewFlagSet("category-delete", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	return cc.emit(cc.Clients.Categories.DeleteCategory(cc.Ctx, id))
}

func runCategoryToggle(cc *commandContext, args []string) error {
	id, err := parseWithID(flag.NewFlagSet("category-toggle", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	return cc.emit(cc.Clients.Categories.ToggleCategoryStatus(cc.Ctx, id))
}

// bindCategoryFlags registers the category fields on fs. The returned builder only
// includes fields that were set, so updates stay partial.
func bindCategoryFlags(fs *flag.FlagSet) func(set map[string]bool) model.CategoryInput {
	name := fs.String("name", "", "Category name")
	icon := fs.String("icon", "", "Icon identifier")
	desc := fs.String("description", "", "Description")
	active := fs.Bool("active", false, "Active flag")
	return func(set map[string]bool) model.CategoryInput {
		return model.CategoryInput{
			Name:        stringIfSet(set, "name", *name),
			Icon:        stringIfSet(set, "icon", *icon),
			Description: stringIfSet(set, "description", *desc),
			IsActive:    boolIfSet(set, "active", *active),
		}
	}
}

func runDirectory(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("directory", flag.ContinueOnError)
	var (
		filters model.DirectoryFilters
		page    model.Pagination
		sorting model.Sorting
	)
	fs.StringVar(&filters.Search, "search", "", "Case-insensitive full name search")
	active := fs.String("active", "", "Filter by active flag: true or false")
	fs.IntVar(&page.Page, "page", 1, "Page number")
	fs.IntVar(&page.PerPage, "per-page", 10, "Page size")
	fs.StringVar(&sorting.SortBy, "sort", "", "Sort key, e.g. fullname or email")
	order := fs.String("order", "", "Sort order: asc or desc")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if filters.IsActive, err = parseTriState("active", *active); err != nil {
		return err
	}
	if sorting.SortingOrder, err = parseOrder(*order); err != nil {
		return err
	}

	result, err := cc.Clients.Directory.List(cc.Ctx, filters, page, sorting)
	if err != nil {
		return err
	}
	return cc.Out.Print(result)
}

func runDirectoryAdd(cc *commandContext, args []string) error {
	user, err := parseDataFlag("directory-add", args)
	if err != nil {
		return err
	}
	created, err := cc.Clients.Directory.Add(cc.Ctx, user)
	if err != nil {
		return err
	}
	return cc.Out.Print(created)
}

func runDirectoryUpdate(cc *commandContext, args []string) error {
	user, err := parseDataFlag("directory-update", args)
	if err != nil {
		return err
	}
	updated, err := cc.Clients.Directory.Update(cc.Ctx, user)
	if err != nil {
		return err
	}
	return cc.Out.Print(updated)
}

func runDirectoryRemove(cc *commandContext, args []string) error {
	id, err := parseWithID(flag.NewFlagSet("directory-remove", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	if err := cc.Clients.Directory.Remove(cc.Ctx, map[string]any{"id": id}); err != nil {
		return err
	}
	return cc.Out.Print(map[string]any{"success": true, "id": id})
}

func parseDataFlag(name string, args []string) (map[string]any, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	data := fs.String("data", "", "User record as a JSON object")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return decodeObject(*data)
}

func parseOrder(v string) (model.SortOrder, error) {
	switch o := model.SortOrder(strings.ToLower(strings.TrimSpace(v))); o {
	case "", model.SortAsc, model.SortDesc:
		return o, nil
	default:
		return "", fmt.Errorf("invalid -order %q (valid options: asc, desc)", v)
	}
}

//nolint:nilnil // an empty value means no filter
func parseTriState(name, v string) (*bool, error) {
	if strings.TrimSpace(v) == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, fmt.Errorf("invalid -%s %q: %w", name, v, err)
	}
	return &b, nil
}
