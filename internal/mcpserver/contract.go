package mcpserver

// DeckFormatContract describes the canonical deck file format that LLM
// consumers should follow when creating or updating decks.
const DeckFormatContract = `# Ansuz Deck Format Contract

Every Markdown deck file stored in Ansuz MUST follow this structure.

## Structure

` + "```" + `markdown
<!-- deck_id: 1700000000000 -->
<!-- note_id: 1700000000001 -->
Q: First question

A: First answer

---

<!-- note_id: 1700000000002 -->
T: A cloze sentence with {{c1::hidden text}}.
` + "```" + `

## Rules

1. **Notes are separated by a blank-line-framed rule:** a line containing
   only ` + "`" + `---` + "`" + ` with one empty line before and after it.
2. **Field lines start with a prefix** (` + "`" + `Q:` + "`" + `, ` + "`" + `A:` + "`" + `, ` + "`" + `T:` + "`" + ` ...) followed by a
   space, or consist of the bare prefix alone for an empty field. Lines
   without a known prefix continue the previous field.
3. **A prefix may appear at most once per note.** Repeating a prefix without
   a separator in between is a parse error.
4. **Id comments** (` + "`" + `<!-- deck_id: N -->` + "`" + `, ` + "`" + `<!-- note_id: N -->` + "`" + `) are managed
   by the sync process. Never invent ids; omit the comment for new notes.
5. **Code fences** (` + "```" + ` or ~~~) suspend prefix matching: everything inside a
   fence belongs to the current field, even lines that look like prefixes.
6. **Encoding** is UTF-8 with a trailing newline.

## Note types

| Type     | Fields (prefix)                                  |
|----------|--------------------------------------------------|
| Choice   | Q:, C1: ... C7:, A: (comma-separated choice numbers) |
| Cloze    | T: (must contain {{c1::...}}), X: (extra, optional)  |
| Input    | Q:, I: (typed answer)                            |
| Reversed | F: (front), B: (back)                            |
| QA       | Q:, A:, X: (extra, optional)                     |

The note type is inferred from which fields are present; there is no type
marker in the file. A note whose fields match no type is rejected.

## Media

- Upload media via the ` + "`" + `upload_media` + "`" + ` tool. It returns a ` + "`" + `markdownImage` + "`" + `
  field ready to paste into a field body.
- Media files are stored in the shared ` + "`" + `media/` + "`" + ` directory (flat, no
  sub-folders).
- Reference in fields using the absolute path: ` + "`" + `![description](/media/file.png)` + "`" + `
- Supported formats: png, jpg, jpeg, gif, webp, svg, pdf.

## Example

` + "```" + `markdown
<!-- deck_id: 1699999999999 -->
Q: What does the rune ansuz stand for?

A: A divine breath or message.

---

T: The ansuz rune belongs to the {{c1::elder futhark}} alphabet.

X: See ![rune chart](/media/futhark.png)
` + "```" + `
`
