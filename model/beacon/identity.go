package beacon

// Identity represents a registered protocol participant: the address under
// which all of its per-run state is keyed, and the public key against which
// its commitment signatures are verified.
type Identity struct {
	Address   Address
	PublicKey []byte
}

// IdentityList is a list of participant identities. The list order is
// meaningful: it records the activation order, i.e. the order in which the
// participants were first registered.
type IdentityList []*Identity

// Addresses returns the addresses of all identities, in list order.
func (il IdentityList) Addresses() []Address {
	addresses := make([]Address, 0, len(il))
	for _, identity := range il {
		addresses = append(addresses, identity.Address)
	}
	return addresses
}

// ByAddress returns the identity with the given address, if it exists.
func (il IdentityList) ByAddress(address Address) (*Identity, bool) {
	for _, identity := range il {
		if identity.Address == address {
			return identity, true
		}
	}
	return nil, false
}

// Contains returns true if the list contains an identity with the given address.
func (il IdentityList) Contains(address Address) bool {
	_, ok := il.ByAddress(address)
	return ok
}

// Count returns the number of identities in the list.
func (il IdentityList) Count() int {
	return len(il)
}
