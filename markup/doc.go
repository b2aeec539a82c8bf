// Package markup reads and writes documents as markdown with grid tables.
//
// A grid table is drawn with '+' corners, '-' row borders and '|' column
// borders. Spans are expressed by leaving out interior borders, and a row
// border drawn with '=' separates the head from the body (the first one)
// and the body from the foot (a second one):
//
//	+-------+-------+
//	| a     | b     |
//	+=======+=======+
//	| c spans both  |
//	+---------------+
//
// Markers on a cell's top border set its alignment: ':' at the left end,
// the right end or both for left, right and center; '>' and '<' at the
// two ends for justify; '^', 'x' or 'v' anywhere in between for top,
// middle and bottom vertical alignment.
//
// Tables that need none of these features are written as pipe tables
// when Options.Promote is set:
//
//	doc, diags := markup.Parse(src)
//	out, diags := markup.Serialize(doc, markup.DefaultOptions())
package markup
