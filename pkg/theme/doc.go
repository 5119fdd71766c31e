/*
Package theme resolves the active visual theme into a chart style descriptor.

A Root plays the part of the document root: it carries named variable sets
(themes), an active theme attribute and the attribute observers that turn a
theme switch into a refresh signal. The Resolver reads four style variables
from any ports.StyleSource on every call and pairs them with the static
palette; nothing is cached between calls.
*/
package theme
