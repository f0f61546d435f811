package repo

import (
	"reflect"
	"testing"

	"outreach/pkg/goutil"
)

func TestToSqlWithArgs(t *testing.T) {
	tests := []struct {
		name     string
		filter   *Filter
		wantSql  string
		wantArgs []interface{}
	}{
		{
			name:    "nil filter",
			filter:  nil,
			wantSql: "",
		},
		{
			name: "single condition",
			filter: &Filter{
				Conditions: []*Condition{
					{Field: "tenant_id", Value: goutil.Uint64(4), Op: OpEq},
				},
			},
			wantSql:  "tenant_id = ?",
			wantArgs: []interface{}{goutil.Uint64(4)},
		},
		{
			name: "multiple conditions joined by logical op",
			filter: &Filter{
				Conditions: []*Condition{
					{Field: "tenant_id", Value: goutil.Uint64(4), Op: OpEq, NextLogicalOp: LogicalOpAnd},
					{Field: "status", Value: goutil.Uint32(1), Op: OpEq},
				},
			},
			wantSql:  "tenant_id = ? AND status = ?",
			wantArgs: []interface{}{goutil.Uint64(4), goutil.Uint32(1)},
		},
		{
			name: "in condition",
			filter: &Filter{
				Conditions: []*Condition{
					{Field: "id", Value: []uint64{1, 2, 3}, Op: OpIn},
				},
			},
			wantSql:  "id IN ?",
			wantArgs: []interface{}{[]uint64{1, 2, 3}},
		},
		{
			name: "like condition",
			filter: &Filter{
				Conditions: []*Condition{
					{Field: "name", Value: goutil.String("%welcome%"), Op: OpLike},
				},
			},
			wantSql:  "name LIKE ?",
			wantArgs: []interface{}{goutil.String("%welcome%")},
		},
		{
			name: "nil value skipped",
			filter: &Filter{
				Conditions: []*Condition{
					{Field: "name", Value: (*string)(nil), Op: OpEq},
				},
			},
			wantSql: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := ToSqlWithArgs(tt.filter)
			if sql != tt.wantSql {
				t.Errorf("sql = %q, want %q", sql, tt.wantSql)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestBuildConditions(t *testing.T) {
	r := new(baseRepo)

	base := []*Condition{
		{Field: "tenant_id", Value: goutil.Uint64(4), Op: OpEq},
	}
	extra := []*Condition{
		{Field: "id", Value: goutil.Uint64(1), Op: OpEq},
	}

	got := r.BuildConditions(base, extra)
	if len(got) != 2 {
		t.Fatalf("expect 2 conditions, got %d", len(got))
	}
	if got[0].NextLogicalOp != LogicalOpAnd {
		t.Errorf("expect AND between base and extra, got %q", got[0].NextLogicalOp)
	}

	// the original base condition is not mutated
	if base[0].NextLogicalOp != "" {
		t.Errorf("base condition mutated: %q", base[0].NextLogicalOp)
	}

	// empty extra returns base untouched
	got = r.BuildConditions(base, nil)
	if len(got) != 1 || got[0].NextLogicalOp != "" {
		t.Errorf("unexpected conditions for empty extra: %v", got)
	}
}
