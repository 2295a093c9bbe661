package graph

const (
	// FRIEND and COLLEAGUE edges are symmetric; RECRUITING only counts in
	// the recruiter -> candidate direction.
	findRelationshipsQuery = `
		MATCH (viewer:User {user_id: $viewer_id})-[r:FRIEND|COLLEAGUE]-(target:User {user_id: $target_id})
		RETURN DISTINCT type(r) AS relationship_type
		UNION
		MATCH (viewer:User {user_id: $viewer_id})-[r:RECRUITING]->(target:User {user_id: $target_id})
		RETURN DISTINCT type(r) AS relationship_type
	`

	saveUserQuery = `
		MERGE (u:User {user_id: $user_id})
		SET u.display_name = $display_name
		RETURN u.user_id AS user_id
	`

	// Relationship types cannot be bound as parameters; the store validates
	// the type against the closed set before substituting it.
	saveRelationshipQueryTmpl = `
		MATCH (a:User {user_id: $from_id})
		MATCH (b:User {user_id: $to_id})
		MERGE (a)-[r:%s]->(b)
		RETURN type(r) AS relationship_type
	`

	saveClaimQuery = `
		MATCH (u:User {user_id: $user_id})
		MERGE (c:Claim {claim_id: $claim_id})
		SET c.topic = $topic,
			c.content_summary = $content_summary,
			c.access_tags = $access_tags,
			c.status = $status,
			c.confidence_score = $confidence_score,
			c.verified_at = $verified_at,
			c.created_at = $created_at,
			c.expires_at = $expires_at,
			c.evidence_ids = $evidence_ids,
			c.entity_ids = $entity_ids
		MERGE (u)-[:MAKES_CLAIM]->(c)
		RETURN c.claim_id AS claim_id
	`

	claimsByUserQuery = `
		MATCH (u:User {user_id: $user_id})-[:MAKES_CLAIM]->(c:Claim)
		RETURN c.claim_id AS claim_id,
			c.topic AS topic,
			c.content_summary AS content_summary,
			c.access_tags AS access_tags,
			c.status AS status,
			c.confidence_score AS confidence_score,
			c.verified_at AS verified_at,
			c.created_at AS created_at,
			c.expires_at AS expires_at,
			c.evidence_ids AS evidence_ids,
			c.entity_ids AS entity_ids
		ORDER BY c.created_at DESC
	`

	updateClaimStatusQuery = `
		MATCH (:User)-[:MAKES_CLAIM]->(c:Claim {claim_id: $claim_id})
		SET c.status = $status,
			c.confidence_score = $confidence_score,
			c.verified_at = $verified_at
		RETURN c.claim_id AS claim_id
	`

	// Evidence raises confidence but never lowers it; an attested claim
	// keeps its attestation-level score.
	addEvidenceQuery = `
		MATCH (:User)-[:MAKES_CLAIM]->(c:Claim {claim_id: $claim_id})
		SET c.evidence_ids = coalesce(c.evidence_ids, []) + $evidence_id,
			c.confidence_score = CASE
				WHEN c.confidence_score >= $confidence_score THEN c.confidence_score
				ELSE $confidence_score
			END
		RETURN c.claim_id AS claim_id
	`
)

// buildIndexQueries are run at bootstrap; failures are logged and skipped
// since the index may already exist.
var buildIndexQueries = []string{
	"CREATE INDEX user_id_idx IF NOT EXISTS FOR (u:User) ON (u.user_id)",
	"CREATE INDEX claim_id_idx IF NOT EXISTS FOR (c:Claim) ON (c.claim_id)",
	"CREATE INDEX claim_status_idx IF NOT EXISTS FOR (c:Claim) ON (c.status)",
}
