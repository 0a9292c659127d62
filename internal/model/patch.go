package model

// UserPatch is a partial update of a user row. Nil means "leave the
// column alone"; a non-nil pointer means "set this value". There is no
// accidental overwrite-with-zero: absent fields never reach the UPDATE
// statement.
type UserPatch struct {
	Email     *string
	Password  *string // plaintext; hashed by the service before storage
	FirstName *string
	LastName  *string
	Role      *Role
	IsActive  *bool
}

// Empty reports whether the patch carries no changes at all.
func (p UserPatch) Empty() bool {
	return p.Email == nil && p.Password == nil && p.FirstName == nil &&
		p.LastName == nil && p.Role == nil && p.IsActive == nil
}
