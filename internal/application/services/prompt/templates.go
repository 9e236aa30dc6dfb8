package prompt

const (
	ultraMinimalSystem = `Name files. Reply JSON {"name":"snake_case","confidence":0-1}.`

	ultraMinimalUser = `{{.FileName}}{{if .Content}}: {{.Content}}{{end}}`

	minimalSystem = `You suggest short descriptive file names.
Reply with JSON only: {"name": "snake_case name without extension", "confidence": 0.0-1.0, "reasoning": "one short sentence"}.`

	minimalUser = `File: {{.FileName}} ({{.TypeClass}})
{{- if .Hints}}
Hints: {{range $i, $h := .Hints}}{{if $i}}, {{end}}{{$h}}{{end}}
{{- end}}
{{- if .Content}}
Content: {{.Content}}
{{- end}}`

	standardSystem = `You are a file naming assistant. Propose one descriptive file name for the file below.
Rules:
1. Use lowercase snake_case, 2-6 words, no file extension.
2. Prefer concrete subjects, places, dates (YYYY_MM_DD) and document titles over generic words.
3. Drop camera prefixes, random ids and version noise.
4. Lower the confidence when the content is ambiguous.
Reply with JSON only: {"name": "...", "confidence": 0.0-1.0, "reasoning": "one short sentence"}.`

	standardUser = `File: {{.FileName}}
Type: {{.TypeClass}}
{{- if .Metadata}}
Metadata:
{{- range .Metadata}}
- {{.Key}}: {{.Value}}
{{- end}}
{{- end}}
{{- if .Hints}}
Hints: {{range $i, $h := .Hints}}{{if $i}}, {{end}}{{$h}}{{end}}
{{- end}}
{{- if .Content}}
Content:
{{.Content}}
{{- end}}`

	batchPatternSystem = `You name a group of similar files at once. Suggest a name for the representative file.
The other files will be named from a pattern where [n] is a zero-padded sequence number and [date] is a YYYY_MM_DD date.
Reply with JSON only: {"name": "snake_case name for the representative", "pattern": "name pattern with [n] and/or [date]", "confidence": 0.0-1.0, "reasoning": "one short sentence"}.`

	batchPatternUser = `Representative: {{.FileName}} ({{.TypeClass}})
{{- if .Content}}
Content: {{.Content}}
{{- end}}
{{- if .Pattern}}
Current pattern: {{.Pattern}}
{{- end}}
Other files:
{{- range .Siblings}}
- {{.}}
{{- end}}
{{- if .MoreCount}}
- ... and {{.MoreCount}} more
{{- end}}`
)
