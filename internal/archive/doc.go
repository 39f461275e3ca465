// Package archive pre-expands nested archives (zip, tar variants, rar) into
// plain files so the sorting engine only ever sees a flat file tree.
package archive
