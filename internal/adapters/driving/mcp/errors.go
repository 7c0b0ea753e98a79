// Package mcp provides an MCP (Model Context Protocol) server adapter for mapxml.
// It lets AI assistants convert JSON documents and check mapping tables
// without touching the filesystem.
package mcp

import "errors"

// ErrMissingConversionService is returned when the conversion service is not provided.
var ErrMissingConversionService = errors.New("mcp: conversion service is required")

// ErrMissingMappingService is returned when the mapping service is not provided.
var ErrMissingMappingService = errors.New("mcp: mapping service is required")
