// Package document carries the document-store specialization of the
// model builder: the storage-container annotation and the store-key
// convention that gives every document root a synthesized identifier and
// a raw-document shadow property.
package document

import (
	"github.com/syssam/metagraph/metadata"
)

// ContainerAnnotation names the storage container an entity type's
// documents live in. It is set on the root of a hierarchy; derived types
// share their root's container.
const ContainerAnnotation = "document:container"

// SetContainer configures the storage container for the type's hierarchy.
func SetContainer(et *metadata.EntityType, name string, source metadata.ConfigurationSource) error {
	_, err := et.RootType().SetAnnotation(ContainerAnnotation, name, source)
	return err
}

// ContainerName returns the configured storage container of the type's
// hierarchy, falling back to the conventional pluralized root type name.
func ContainerName(et *metadata.EntityType) string {
	root := et.RootType()
	if ann := root.FindAnnotation(ContainerAnnotation); ann != nil {
		if s, ok := ann.Value().(string); ok && s != "" {
			return s
		}
	}
	return metadata.DefaultContainerName(root.Name())
}
