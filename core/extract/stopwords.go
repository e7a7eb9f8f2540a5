package extract

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"Add", "Create", "Save", "Update", "Change", "Edit", "Delete", "Remove",
		"Set", "Get", "Show", "List", "Search", "Find", "Display", "New",
		"Person", "Contact", "Entry", "Record", "User", "Client", "Member",
		"Phone", "Email", "Address", "Birthday", "Note", "Tag", "Info",
		"January", "February", "March", "April", "May", "June", "July",
		"August", "September", "October", "November", "December",
		"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
		"Please", "Can", "Could", "Would", "Should", "Will", "Might",
		"Suite", "Apt", "Apartment", "Unit", "Building", "Floor", "Room",
	} {
		stopWords[w] = struct{}{}
	}
}

// IsStopWord reports whether word is a command verb, month, weekday or generic noun
// that must not be taken for a name. The match is case-sensitive.
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}
