package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/facet/pkg/types"
)

// queryRequest mirrors the HTTP query body: where/select/include for
// reads, data for writes.
type queryRequest struct {
	Where    types.Where      `json:"where,omitempty"`
	Select   types.SelectMap  `json:"select,omitempty"`
	Include  types.IncludeMap `json:"include,omitempty"`
	Strategy types.Strategy   `json:"relationLoadStrategy,omitempty"`
	Data     types.Record     `json:"data,omitempty"`
}

func (r *queryRequest) query() types.Query {
	return types.Query{
		Where:    r.Where,
		Select:   r.Select,
		Include:  r.Include,
		Strategy: r.Strategy,
	}
}

func newQueryCmd() *cobra.Command {
	var queryJSON string

	cmd := &cobra.Command{
		Use:   "query <model> <operation>",
		Short: "Run one operation against a collection",
		Long: "Run find-unique, find-many, create, update, delete, or count against a\n" +
			"model. The query body is JSON from --query, or stdin when --query is '-'.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args[0], args[1], queryJSON)
		},
	}
	cmd.Flags().StringVarP(&queryJSON, "query", "q", "{}", "query body as JSON ('-' reads stdin)")
	return cmd
}

func runQuery(cmd *cobra.Command, model, op, queryJSON string) error {
	body := []byte(queryJSON)
	if queryJSON == "-" {
		read, err := io.ReadAll(os.Stdin)
		if err != nil {
			return exitError(exitSysError, fmt.Sprintf("read stdin: %s", err))
		}
		body = read
	}

	var req queryRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return exitError(exitUserError, fmt.Sprintf("parse query: %s", err))
	}

	store, err := openStore()
	if err != nil {
		return exitError(exitSysError, err.Error())
	}
	defer store.Detach()

	col, err := store.Collection(model)
	if err != nil {
		return exitError(exitUserError, err.Error())
	}

	result, err := execQuery(col, op, &req)
	if err != nil {
		return exitError(exitUserError, err.Error())
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return exitError(exitSysError, err.Error())
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func execQuery(col types.Collection, op string, req *queryRequest) (any, error) {
	switch op {
	case "find-unique":
		return col.FindUnique(req.query())
	case "find-many":
		return col.FindMany(req.query())
	case "create":
		return col.Create(req.Data, req.query())
	case "update":
		return col.Update(req.Where, req.Data, req.query())
	case "delete":
		if err := col.Delete(req.Where); err != nil {
			return nil, err
		}
		return map[string]any{"ok": true}, nil
	case "count":
		n, err := col.Count(req.Where)
		if err != nil {
			return nil, err
		}
		return map[string]any{"count": n}, nil
	default:
		return nil, fmt.Errorf("unknown operation %q", op)
	}
}
