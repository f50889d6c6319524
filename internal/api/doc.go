// Package api exposes the HTTP interface for the harvester service.
package api
