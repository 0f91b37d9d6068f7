package metadata

// Key is an ordered sequence of properties identifying instances of an
// entity type. The properties of a key all belong to the declaring type.
type Key struct {
	declaring  *EntityType
	properties []*Property
	source     ConfigurationSource
}

// Properties returns the key properties in order.
func (k *Key) Properties() []*Property {
	return append([]*Property(nil), k.properties...)
}

// DeclaringEntityType returns the entity type the key is declared on.
func (k *Key) DeclaringEntityType() *EntityType { return k.declaring }

// Source returns the key's configuration source.
func (k *Key) Source() ConfigurationSource { return k.source }

// IsPrimary reports whether this key is the primary key of its type.
func (k *Key) IsPrimary() bool { return k.declaring.primaryKey == k }

// Contains reports whether the key includes the property.
func (k *Key) Contains(p *Property) bool {
	for _, kp := range k.properties {
		if kp == p {
			return true
		}
	}
	return false
}
