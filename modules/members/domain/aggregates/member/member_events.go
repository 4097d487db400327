package member

type CreatedEvent struct {
	Result Member
}

// UpdatedEvent carries the member before and after the change.
type UpdatedEvent struct {
	Data   Member
	Result Member
}

type DeletedEvent struct {
	ID int64
}
