// Copyright (c) 2023 The KBase Project and its Contributors
// Copyright (c) 2023 Cohere Consulting, LLC
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package frictionless

import (
	"slices"
)

// a Frictionless data package describing a set of related tabular resources
// (https://specs.frictionlessdata.io/data-package/)
type DataPackage struct {
	// a Markdown description of the data package
	Description string `json:"description,omitempty"`
	// a URL for a web address related to the data package
	Homepage string `json:"homepage,omitempty"`
	// an array of string keywords to assist users searching for the data package
	// in catalogs
	Keywords []string `json:"keywords,omitempty"`
	// a list identifying the license or licenses under which this resource is
	// managed (optional)
	Licenses []DataLicense `json:"licenses,omitempty"`
	// the name of the data package
	Name string `json:"name"`
	// the profile of this descriptor
	// (https://specs.frictionlessdata.io/profiles/#language)
	Profile string `json:"profile,omitempty"`
	// a list of resources that belong to the package
	Resources []DataResource `json:"resources"`
	// a list identifying the sources for this resource (optional)
	Sources []DataSource `json:"sources,omitempty"`
	// a title or one sentence description for the data package
	Title string `json:"title,omitempty"`
	// a version string identifying the version of the data package, conforming to
	// semantic versioning if relevant
	Version string `json:"version,omitempty"`
}

// returns the resource with the given name, or false if there is none
func (p DataPackage) Resource(name string) (DataResource, bool) {
	i := slices.IndexFunc(p.Resources, func(r DataResource) bool {
		return r.Name == name
	})
	if i == -1 {
		return DataResource{}, false
	}
	return p.Resources[i], true
}

// a Frictionless data resource describing a table
// (https://specs.frictionlessdata.io/data-resource/)
type DataResource struct {
	// a description of the resource (optional)
	Description string `json:"description,omitempty"`
	// indicates the format of the resource's file, often used as an extension
	Format string `json:"format,omitempty"`
	// the mediatype/mimetype of the resource (optional, e.g. "application/json")
	MediaType string `json:"mediatype,omitempty"`
	// the name of the resource
	Name string `json:"name"`
	// a relative path to the resource's file within a data package directory
	Path string `json:"path"`
	// the table schema for the resource's records
	Schema TableSchema `json:"schema"`
	// a title or label for the resource (optional)
	Title string `json:"title,omitempty"`
}

// a Frictionless table schema (https://specs.frictionlessdata.io/table-schema/)
type TableSchema struct {
	Fields []TableField `json:"fields"`
}

// returns the names of the fields in the schema, in order
func (s TableSchema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, field := range s.Fields {
		names[i] = field.Name
	}
	return names
}

// a field (column) in a table schema
type TableField struct {
	// the name of the field
	Name string `json:"name"`
	// the field's type ("string", "integer", "number", "object", ...)
	Type string `json:"type"`
	// a description of the field (optional)
	Description string `json:"description,omitempty"`
	// the name of another resource in the same package describing the contents
	// of an "object" field (optional)
	Resource string `json:"resource,omitempty"`
}

// information about the source of a DataResource
type DataSource struct {
	// an email address identifying a contact associated with the source (optional)
	Email string `json:"email,omitempty"`
	// a URI or relative path pointing to the source (optional)
	Path string `json:"path,omitempty"`
	// a descriptive title for the source
	Title string `json:"title"`
}

// information about a license associated with a DataResource
type DataLicense struct {
	// the abbreviated name of the license
	Name string `json:"name"`
	// a URI or relative path at which the license text may be retrieved
	Path string `json:"path"`
	// the descriptive title of the license (optional)
	Title string `json:"title,omitempty"`
}
