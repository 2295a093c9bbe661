package model

// RelationshipType is a social edge between two users.
//
// FRIEND and COLLEAGUE are symmetric; RECRUITING is directed
// (recruiter -> candidate). SELF and STRANGER are derived at resolution
// time and never stored in the graph.
type RelationshipType string

const (
	RelSelf       RelationshipType = "SELF"
	RelStranger   RelationshipType = "STRANGER"
	RelFriend     RelationshipType = "FRIEND"
	RelColleague  RelationshipType = "COLLEAGUE"
	RelRecruiting RelationshipType = "RECRUITING"
)

// StoredRelationshipTypes are the edge types that may exist in the graph.
var StoredRelationshipTypes = []RelationshipType{RelFriend, RelColleague, RelRecruiting}
