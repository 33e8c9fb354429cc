package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   []Statement
	}{
		{"empty", "  \n-- nothing\n/* here */ ;", nil},
		{"single", "SELECT 1", []Statement{{SQL: "SELECT 1"}}},
		{"terminated", "SELECT 1;", []Statement{{SQL: "SELECT 1;"}}},
		{
			"several",
			"CREATE TABLE a (x);\n  INSERT INTO a VALUES (?);\nSELECT * FROM a WHERE x > ?",
			[]Statement{
				{SQL: "CREATE TABLE a (x);"},
				{SQL: "INSERT INTO a VALUES (?);", Params: 1},
				{SQL: "SELECT * FROM a WHERE x > ?", Params: 1},
			},
		},
		{
			"quoted semicolons",
			`SELECT ';', "a;b", [c;d], 'it''s; here'; SELECT 2`,
			[]Statement{
				{SQL: `SELECT ';', "a;b", [c;d], 'it''s; here';`},
				{SQL: "SELECT 2"},
			},
		},
		{
			"comments",
			"SELECT 1; -- one; two\n/* three; */ SELECT 4;",
			[]Statement{{SQL: "SELECT 1;"}, {SQL: "SELECT 4;"}},
		},
		{
			"parameters",
			"SELECT ?, ?3, :name, @name, $other, :name;",
			[]Statement{{SQL: "SELECT ?, ?3, :name, @name, $other, :name;", Params: 6}},
		},
		{
			"trigger",
			"CREATE TEMP TRIGGER t AFTER INSERT ON a BEGIN INSERT INTO b VALUES (1); DELETE FROM c; END; SELECT 1;",
			[]Statement{
				{SQL: "CREATE TEMP TRIGGER t AFTER INSERT ON a BEGIN INSERT INTO b VALUES (1); DELETE FROM c; END;"},
				{SQL: "SELECT 1;"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Split(tt.script))
		})
	}
}

func TestComplete(t *testing.T) {
	tests := []struct {
		script   string
		complete bool
	}{
		{"", false},
		{"SELECT 1;", true},
		{"SELECT 1", false},
		{"SELECT 1; -- trailing", true},
		{"SELECT ';'", false},
		{"SELECT 'unterminated;", false},
		{"CREATE TRIGGER t AFTER INSERT ON a BEGIN SELECT 1;", false},
		{"CREATE TRIGGER t AFTER INSERT ON a BEGIN SELECT 1; END;", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.complete, Complete(tt.script), tt.script)
	}
}
