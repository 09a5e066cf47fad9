// Package matrix builds the dense matrices the similarity engine works on:
// the user×title rating matrix with its presence mask and the title×token
// genre count matrix. Every matrix carries immutable index maps translating
// between ids or titles and positions.
package matrix
