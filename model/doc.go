// Package model provides the document tree that grid tables live in.
//
// A document is a tree of immutable [Node] values. Nodes are never modified
// once built; edits produce a new tree that shares every untouched subtree
// with the previous snapshot.
//
// # Node vocabulary
//
// Block nodes:
//
//   - doc - the root
//   - paragraph, heading, code_block - textblocks holding text nodes
//   - blockquote - a container of blocks
//   - table - a grid table: tableHead? tableBody tableFoot?
//   - simpleTable - the promoted, pipe-table form of a grid table
//
// Grid table structure:
//
//	table
//	  tableHead   (optional, >= 1 row)
//	  tableBody   (required, >= 1 row)
//	  tableFoot   (optional, >= 1 row)
//	    tableRow  (>= 1 cell)
//	      tableCell{colSpan,rowSpan,align,valign} (>= 1 block)
//
// The column index of a cell is never stored. It is the sum of the column
// spans of the cells before it in the same row.
//
// # Positions
//
// Every location in a document is an integer position. The document's
// content starts at 0, a text node occupies one position per rune and any
// other node adds an opening and closing token around its content:
//
//	doc:  paragraph("ab")
//	pos:  0 1 2 3 4
//	       ^ ^ ^ ^
//	       | | | after the paragraph
//	       | inside the text
//	       before the paragraph
//
// [Resolve] turns a position into a [ResolvedPos] that knows every
// ancestor around it.
//
// # Layout
//
// [LayoutTable] computes a visual occupancy grid for renderers. Editing
// commands do not use it.
package model
