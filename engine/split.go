package engine

import (
	"strconv"
	"strings"
)

// Statement is one statement of a script.
type Statement struct {
	SQL string
	// Params is the number of values the statement binds, counted the way
	// sqlite3_bind_parameter_count does.
	Params int
}

// Split breaks script into statements at the semicolons that end them.
// Semicolons inside literals, quoted identifiers, comments and trigger bodies
// do not count. Text made up only of whitespace and comments is dropped; a
// trailing statement without a semicolon is kept.
func Split(script string) []Statement {
	var stmts []Statement
	trailing := scan(script, func(s Statement) {
		stmts = append(stmts, s)
	})
	if trailing != nil {
		stmts = append(stmts, *trailing)
	}
	return stmts
}

// Complete reports whether script ends with a finished statement, so a shell
// knows when to stop reading lines.
func Complete(script string) bool {
	n := 0
	trailing := scan(script, func(Statement) { n++ })
	return n > 0 && trailing == nil
}

// statementScanner tracks the statement being read.
type statementScanner struct {
	start int
	// words holds the leading keywords, enough to recognise CREATE TRIGGER.
	words   []string
	trigger bool
	last    string

	next  int
	named map[string]bool
}

func (s *statementScanner) started() bool {
	return s.start >= 0
}

func (s *statementScanner) reset() {
	*s = statementScanner{start: -1}
}

func (s *statementScanner) token(pos int, word string) {
	if s.start < 0 {
		s.start = pos
	}
	s.last = word
	if word == "" || len(s.words) >= 4 {
		return
	}
	if len(s.words) == 0 && word == "EXPLAIN" {
		return
	}
	s.words = append(s.words, word)
	switch {
	case len(s.words) == 2 && s.words[0] == "CREATE" && word == "TRIGGER",
		len(s.words) == 3 && s.words[0] == "CREATE" && (s.words[1] == "TEMP" || s.words[1] == "TEMPORARY") && word == "TRIGGER":
		s.trigger = true
	}
}

func (s *statementScanner) param(name string) {
	switch {
	case name == "":
		s.next++
	case name[0] >= '0' && name[0] <= '9':
		if n, err := strconv.Atoi(name); err == nil && n > s.next {
			s.next = n
		}
	default:
		if s.named == nil {
			s.named = make(map[string]bool)
		}
		if !s.named[name] {
			s.named[name] = true
			s.next++
		}
	}
}

func isIdent(b byte) bool {
	return b == '_' || b >= 0x80 ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// scan calls emit for every statement closed by a semicolon and returns the
// unterminated statement at the end of script, if any.
func scan(script string, emit func(Statement)) *Statement {
	var st statementScanner
	st.reset()
	finish := func(end int) Statement {
		return Statement{SQL: strings.TrimSpace(script[st.start:end]), Params: st.next}
	}

	for i := 0; i < len(script); {
		c := script[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f':
			i++
		case c == '-' && strings.HasPrefix(script[i:], "--"):
			if nl := strings.IndexByte(script[i:], '\n'); nl >= 0 {
				i += nl + 1
			} else {
				i = len(script)
			}
		case c == '/' && strings.HasPrefix(script[i:], "/*"):
			if end := strings.Index(script[i+2:], "*/"); end >= 0 {
				i += end + 4
			} else {
				i = len(script)
			}
		case c == '\'' || c == '"' || c == '`' || c == '[':
			closer := c
			if c == '[' {
				closer = ']'
			}
			st.token(i, "")
			if end := strings.IndexByte(script[i+1:], closer); end >= 0 {
				i += end + 2
			} else {
				i = len(script)
			}
		case c == ';':
			if !st.started() {
				i++
				continue
			}
			if st.trigger && st.last != "END" {
				st.token(i, "")
				i++
				continue
			}
			emit(finish(i + 1))
			st.reset()
			i++
		case c == '?' || ((c == ':' || c == '@' || c == '$') && i+1 < len(script) && isIdent(script[i+1])):
			st.token(i, "")
			j := i + 1
			for j < len(script) && isIdent(script[j]) {
				j++
			}
			if c == '?' {
				st.param(script[i+1 : j])
			} else {
				st.param(script[i:j])
			}
			i = j
		case isIdent(c):
			j := i + 1
			for j < len(script) && isIdent(script[j]) {
				j++
			}
			st.token(i, strings.ToUpper(script[i:j]))
			i = j
		default:
			st.token(i, "")
			i++
		}
	}
	if !st.started() {
		return nil
	}
	trailing := finish(len(script))
	return &trailing
}
