/*
Package status loads source files and writes patched content back safely.

	            +-------------+
	            |   Status    |
	            |  (Storage)  |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+----+
	|   Files   |           | Tracker |
	| (Load/    |           | (per    |
	|  Commit)  |           |  file)  |
	+-----------+           +---------+

🎯 Purpose:
- Reads UTF-8 source text and remembers what it looked like
- Writes new content atomically, or not at all
- Tracks what each run did to each file

🔄 Flow:
1. Load reads the file, its mode and a sha256 checksum
2. The caller patches Document.Content
3. Commit compares, re-checks the checksum, writes a temp file and renames it

⚡ Guarantees:
- Unchanged content is never written
- A file changed on disk since Load is not overwritten
- A failed write removes its temp file and leaves the original in place
- File permissions survive the rewrite

🔍 Example:

	m := status.New(baseDir, status.WithBackup(true))

	doc, err := m.Load(ctx, "src/routes/divisions.ts")
	if err != nil {
		return err
	}

	st, err := m.Commit(ctx, doc, result.Modified)
*/
package status
