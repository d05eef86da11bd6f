package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/regdesk/pkg/app"
	"github.com/getmockd/regdesk/pkg/apperr"
	"github.com/getmockd/regdesk/pkg/cli/internal/flags"
	"github.com/getmockd/regdesk/pkg/cli/internal/output"
	"github.com/getmockd/regdesk/pkg/cli/internal/parse"
	"github.com/getmockd/regdesk/pkg/config"
	"github.com/getmockd/regdesk/pkg/domain"
	"github.com/getmockd/regdesk/pkg/service"
	"github.com/getmockd/regdesk/pkg/table"
	"github.com/getmockd/regdesk/pkg/views"
)

// action is a status transition exposed as a subcommand.
type action[T any] struct {
	name  string
	short string
	run   func(a *app.App) func(ctx context.Context, id string) (T, error)
}

// resourceCmd builds the command group of one record type.
type resourceCmd[T, P, F any] struct {
	e        *env
	name     string
	singular string
	short    string
	aliases  []string
	view     views.View[T]
	svc      func(a *app.App) *service.Resource[T, P, F]
	id       func(T) string
	actions  []action[T]
	stats    func(a *app.App) func(ctx context.Context) (any, error)
	extra    []*cobra.Command
}

func (rc *resourceCmd[T, P, F]) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:     rc.name,
		Aliases: rc.aliases,
		Short:   rc.short,
	}
	cmd.AddCommand(rc.listCmd(), rc.getCmd(), rc.createCmd(), rc.updateCmd(), rc.deleteCmd())
	for _, act := range rc.actions {
		cmd.AddCommand(rc.actionCmd(act))
	}
	if rc.stats != nil {
		cmd.AddCommand(rc.statsCmd())
	}
	cmd.AddCommand(rc.extra...)
	return cmd
}

type listFlags struct {
	search  string
	filters flags.Pairs
	where   string
	sort    string
	order   string
	page    int
	size    int
	all     bool
}

func (rc *resourceCmd[T, P, F]) listCmd() *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + rc.name,
		Example: fmt.Sprintf(`  # First page, newest first
  regdesk %[1]s list

  # Free-text search and a filter
  regdesk %[1]s list -q "nguyễn" --filter status=active

  # Expression over fields, sorted
  regdesk %[1]s list --where 'status == "active"' --sort created_at --order asc

  # Every row as JSON
  regdesk %[1]s list --all --json`, rc.name),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rc.runList(cmd, lf)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&lf.search, "search", "q", "", "Case-insensitive text search over the searchable fields")
	f.Var(&lf.filters, "filter", "Filter as key=value (repeatable): "+filterKeys(rc.view))
	f.StringVar(&lf.where, "where", "", "Boolean expression over fields, e.g. 'points < 6'")
	f.StringVar(&lf.sort, "sort", "", "Field to sort by")
	f.StringVar(&lf.order, "order", "asc", "Sort order: asc or desc")
	f.IntVar(&lf.page, "page", 1, "Page number")
	f.IntVar(&lf.size, "size", 0, "Rows per page (default from pageSize config)")
	f.BoolVar(&lf.all, "all", false, "Show every row on one page")
	return cmd
}

func filterKeys[T any](v views.View[T]) string {
	keys := make([]string, len(v.Filters))
	for i, f := range v.Filters {
		keys[i] = f.Key
	}
	return strings.Join(keys, ", ")
}

func (rc *resourceCmd[T, P, F]) runList(cmd *cobra.Command, lf listFlags) error {
	size := lf.size
	if size == 0 {
		size = rc.e.cfg.PageSize
	}
	if size < 1 || size > config.MaxPageSize {
		return &apperr.ValidationError{Field: "size", Message: fmt.Sprintf("must be between 1 and %d", config.MaxPageSize)}
	}
	if lf.page < 1 {
		return &apperr.ValidationError{Field: "page", Message: "must be a positive integer"}
	}

	a, err := rc.e.App()
	if err != nil {
		return err
	}
	var filter F
	rows, err := rc.svc(a).GetAll(cmd.Context(), filter)
	if err != nil {
		return err
	}

	t := rc.view.Table(rows, size)
	t.SetSearch(lf.search)
	for _, key := range lf.filters.Keys {
		value := lf.filters.Values[key]
		f, ok := rc.view.Filter(key)
		if !ok {
			return &apperr.ValidationError{Field: "filter", Message: fmt.Sprintf("unknown filter %q (available: %s)", key, filterKeys(rc.view))}
		}
		if !f.Accepts(value) {
			allowed := make([]string, len(f.Options))
			for i, o := range f.Options {
				allowed[i] = o.Value
			}
			return &apperr.ValidationError{Field: key, Message: fmt.Sprintf("invalid value %q (allowed: %s)", value, strings.Join(allowed, ", "))}
		}
		t.SetFilter(key, value)
	}
	if err := t.SetWhere(lf.where); err != nil {
		return &apperr.ValidationError{Field: "where", Message: err.Error()}
	}
	sort := rc.view.DefaultSort
	if lf.sort != "" {
		if _, ok := rc.view.Fields.Lookup(lf.sort); !ok {
			return &apperr.ValidationError{Field: "sort", Message: fmt.Sprintf("unknown field %q (available: %s)", lf.sort, strings.Join(rc.view.Fields.Keys(), ", "))}
		}
		sort = table.SortState{Field: lf.sort, Direction: table.ParseDirection(lf.order)}
	}
	t.SetSort(sort.Field, sort.Direction)
	if lf.all {
		t.SetPageSize(max(len(rows), 1))
	}
	t.GoToPage(lf.page)
	v := t.View()

	page := domain.Page[T]{
		TotalCount: v.TotalItems,
		TotalPages: v.TotalPages,
		Page:       v.CurrentPage,
		Size:       v.PageSize,
		HasMore:    v.HasNext,
		Items:      v.Rows,
		ListKey:    rc.name,
	}
	return rc.e.printResult(cmd, page, func(w io.Writer) error {
		if v.TotalItems == 0 {
			_, err := fmt.Fprintf(w, "No %s found\n", rc.name)
			return err
		}
		if err := table.Render(w, rc.view.Columns, v); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "\nPage %d of %d (%d %s)\n", v.CurrentPage, v.TotalPages, v.TotalItems, rc.name)
		return err
	})
}

func (rc *resourceCmd[T, P, F]) getCmd() *cobra.Command {
	var field string
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one " + rc.singular,
		Example: fmt.Sprintf(`  regdesk %[1]s get <id>
  regdesk %[1]s get <id> --field '$.status'`, rc.name),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rc.e.App()
			if err != nil {
				return err
			}
			row, err := rc.svc(a).GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if field != "" {
				return rc.e.printField(cmd, row, field)
			}
			return rc.e.printRecord(cmd, row)
		},
	}
	cmd.Flags().StringVar(&field, "field", "", "JSONPath expression selecting part of the record")
	return cmd
}

// printField prints the values at a JSONPath expression. Strings print
// bare in text mode.
func (e *env) printField(cmd *cobra.Command, row any, path string) error {
	x, err := jp.ParseString(path)
	if err != nil {
		return &apperr.ValidationError{Field: "field", Message: err.Error()}
	}
	data, err := json.Marshal(row)
	if err != nil {
		return err
	}
	var doc any
	if err := oj.Unmarshal(data, &doc); err != nil {
		return err
	}
	results := x.Get(doc)
	if len(results) == 0 {
		return &apperr.NotFoundError{Resource: "field", ID: path}
	}
	var out any = results
	if len(results) == 1 {
		out = results[0]
	}
	return e.printResult(cmd, out, func(w io.Writer) error {
		for _, r := range results {
			if s, ok := r.(string); ok {
				fmt.Fprintln(w, s)
				continue
			}
			fmt.Fprintln(w, oj.JSON(r))
		}
		return nil
	})
}

type bodyFlags struct {
	file string
	data string
	set  flags.Pairs
}

func (bf *bodyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&bf.file, "file", "f", "", "JSON or YAML file with the fields (- for stdin)")
	cmd.Flags().StringVarP(&bf.data, "data", "d", "", "Inline JSON or YAML with the fields")
	cmd.Flags().Var(&bf.set, "set", "Field as key=value (repeatable, overrides file and data)")
}

// body merges --file, --data and --set into one JSON object.
func (bf *bodyFlags) body(stdin io.Reader) ([]byte, error) {
	fields := map[string]any{}
	merge := func(src []byte, origin string) error {
		if len(bytes.TrimSpace(src)) == 0 {
			return nil
		}
		var doc map[string]any
		if err := yaml.Unmarshal(src, &doc); err != nil {
			return &apperr.ValidationError{Field: origin, Message: "expected a JSON or YAML object: " + err.Error()}
		}
		for k, v := range doc {
			fields[k] = v
		}
		return nil
	}

	switch bf.file {
	case "":
	case "-":
		src, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		if err := merge(src, "file"); err != nil {
			return nil, err
		}
	default:
		src, err := os.ReadFile(bf.file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", bf.file, err)
		}
		if err := merge(src, "file"); err != nil {
			return nil, err
		}
	}
	if err := merge([]byte(bf.data), "data"); err != nil {
		return nil, err
	}
	for _, k := range bf.set.Keys {
		fields[k] = parse.Scalar(bf.set.Values[k])
	}
	if len(fields) == 0 {
		return nil, &apperr.ValidationError{Message: "no fields given; use --file, --data or --set"}
	}
	return json.Marshal(fields)
}

// decodeStrict decodes data into v, rejecting unknown fields.
func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &apperr.ValidationError{Field: typeErr.Field, Message: "has the wrong type"}
		}
		if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
			return &apperr.ValidationError{Field: strings.Trim(field, `"`), Message: "is not a known field"}
		}
		return &apperr.ValidationError{Message: err.Error()}
	}
	return nil
}

func (rc *resourceCmd[T, P, F]) createCmd() *cobra.Command {
	var bf bodyFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a " + rc.singular,
		Example: fmt.Sprintf(`  regdesk %[1]s create -f %[2]s.yaml
  cat %[2]s.json | regdesk %[1]s create -f -`, rc.name, rc.singular),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := bf.body(cmd.InOrStdin())
			if err != nil {
				return err
			}
			var row T
			if err := decodeStrict(data, &row); err != nil {
				return err
			}
			a, err := rc.e.App()
			if err != nil {
				return err
			}
			created, err := rc.svc(a).Create(cmd.Context(), row)
			if err != nil {
				return err
			}
			hint(cmd, "Created %s %s", rc.singular, rc.id(created))
			return rc.e.printRecord(cmd, created)
		},
	}
	bf.register(cmd)
	return cmd
}

func (rc *resourceCmd[T, P, F]) updateCmd() *cobra.Command {
	var bf bodyFlags
	cmd := &cobra.Command{
		Use:     "update <id>",
		Short:   "Update fields of a " + rc.singular,
		Example: fmt.Sprintf(`  regdesk %s update <id> --set phone="0903 000 111"`, rc.name),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := bf.body(cmd.InOrStdin())
			if err != nil {
				return err
			}
			var patch P
			if err := decodeStrict(data, &patch); err != nil {
				return err
			}
			a, err := rc.e.App()
			if err != nil {
				return err
			}
			updated, err := rc.svc(a).Update(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			hint(cmd, "Updated %s %s", rc.singular, args[0])
			return rc.e.printRecord(cmd, updated)
		},
	}
	bf.register(cmd)
	return cmd
}

func (rc *resourceCmd[T, P, F]) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a " + rc.singular,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rc.e.App()
			if err != nil {
				return err
			}
			if err := rc.svc(a).Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			return rc.e.printMessage(cmd, "Deleted %s %s", rc.singular, args[0])
		},
	}
}

func (rc *resourceCmd[T, P, F]) actionCmd(act action[T]) *cobra.Command {
	return &cobra.Command{
		Use:   act.name + " <id>",
		Short: act.short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rc.e.App()
			if err != nil {
				return err
			}
			row, err := act.run(a)(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			hint(cmd, "%s %s: %s", strings.ToUpper(rc.singular[:1])+rc.singular[1:], args[0], act.name)
			return rc.e.printRecord(cmd, row)
		},
	}
}

func (rc *resourceCmd[T, P, F]) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show " + rc.singular + " statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := rc.e.App()
			if err != nil {
				return err
			}
			stats, err := rc.stats(a)(cmd.Context())
			if err != nil {
				return err
			}
			return rc.e.printResult(cmd, stats, func(w io.Writer) error {
				return output.YAML(w, stats)
			})
		},
	}
}
