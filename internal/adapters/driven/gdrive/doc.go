// Package gdrive implements the document provider port against the
// Google Drive and Google Docs APIs. All calls go through a shared
// rate limiter and return errors classified as transient or permanent.
package gdrive
