package challenge

import (
	"encoding/json"
	"strings"
)

// resultMarker prefixes the line carrying the program's return value.
const resultMarker = "__SHADOW_RANK_RESULT__:"

// Harness wraps challenge code in an async function so top-level return
// and await work, then prints the formatted return value on a marked line.
// Thrown errors go to stderr and exit non-zero.
func Harness(code string) string {
	var b strings.Builder
	b.WriteString("\"use strict\";\n")
	b.WriteString("const __fmt = (v) => {\n")
	b.WriteString("  if (v === null) return 'null';\n")
	b.WriteString("  if (v === undefined) return 'undefined';\n")
	b.WriteString("  if (typeof v === 'string') return v;\n")
	b.WriteString("  if (typeof v === 'function') return '[Function: ' + (v.name || 'anonymous') + ']';\n")
	b.WriteString("  if (v instanceof Error) return v.name + ': ' + v.message;\n")
	b.WriteString("  if (typeof v === 'object') { try { return JSON.stringify(v); } catch (e) { return String(v); } }\n")
	b.WriteString("  return String(v);\n")
	b.WriteString("};\n")
	b.WriteString("(async () => {\n")
	b.WriteString(code)
	b.WriteString("\n})().then(\n")
	b.WriteString("  (v) => { process.stdout.write('\\n" + resultMarker + "' + JSON.stringify(__fmt(v)) + '\\n'); },\n")
	b.WriteString("  (e) => { console.error(e && e.name ? e.name + ': ' + e.message : String(e)); process.exitCode = 1; }\n")
	b.WriteString(");\n")
	return b.String()
}

// ReturnValue extracts the value printed by Harness. The last marked line
// wins, so user output cannot pre-empt the real result.
func ReturnValue(stdout string) (string, bool) {
	idx := strings.LastIndex(stdout, resultMarker)
	if idx < 0 {
		return "", false
	}
	line := stdout[idx+len(resultMarker):]
	if nl := strings.IndexByte(line, '\n'); nl >= 0 {
		line = line[:nl]
	}
	return unquoteJSONString(strings.TrimSpace(line))
}

// ConsoleOutput is stdout with the marked result lines removed: what the
// challenge code itself printed.
func ConsoleOutput(stdout string) string {
	lines := strings.Split(stdout, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if !strings.HasPrefix(l, resultMarker) {
			kept = append(kept, l)
		}
	}
	return strings.TrimRight(strings.Join(kept, "\n"), "\n")
}

// Matches compares a return value with the expected output after trimming
// and collapsing whitespace.
func Matches(expected, actual string) bool {
	return normalize(expected) == normalize(actual)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func unquoteJSONString(s string) (string, bool) {
	var out string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return "", false
	}
	return out, true
}
