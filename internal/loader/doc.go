// Package loader reads descriptor documents from disk, an fs.FS or HTTP.
package loader
