package chatbotRepository

const (
	queryGetActivePatterns = `
		SELECT
			id,
			name,
			keywords,
			regexes,
			confidence_threshold,
			high_intent,
			requires_data,
			action_type,
			priority,
			is_active,
			created_at,
			updated_at
		FROM intent_patterns
		WHERE is_active = TRUE
		ORDER BY priority ASC, created_at ASC
	`

	queryGetKnowledgeByType = `
		SELECT
			id,
			type,
			title,
			content,
			tags,
			is_active,
			created_at,
			updated_at
		FROM knowledge_items
		WHERE type = :type
		  AND is_active = TRUE
		ORDER BY created_at ASC
	`

	queryGetKnowledgeByTags = `
		SELECT
			id,
			type,
			title,
			content,
			tags,
			is_active,
			created_at,
			updated_at
		FROM knowledge_items
		WHERE tags && :tags
		  AND is_active = TRUE
		ORDER BY created_at ASC
		LIMIT :limit
	`

	queryGetActiveTemplates = `
		SELECT
			id,
			intent_name,
			scenario,
			template,
			variables,
			priority,
			is_active,
			created_at,
			updated_at
		FROM response_templates
		WHERE is_active = TRUE
		ORDER BY intent_name ASC, priority ASC
	`

	queryCreateConversation = `
		INSERT INTO conversations (
			id,
			visitor_id,
			message_count,
			question_count,
			objection_count,
			company_name,
			budget_identified,
			timeline,
			use_case,
			authority_level,
			matched_signals,
			pages_visited,
			last_lead_score,
			started_at,
			updated_at
		) VALUES (
			:id,
			:visitor_id,
			:message_count,
			:question_count,
			:objection_count,
			:company_name,
			:budget_identified,
			:timeline,
			:use_case,
			:authority_level,
			:matched_signals,
			:pages_visited,
			:last_lead_score,
			:started_at,
			:updated_at
		)
	`

	queryGetConversationByID = `
		SELECT
			id,
			visitor_id,
			message_count,
			question_count,
			objection_count,
			company_name,
			budget_identified,
			timeline,
			use_case,
			authority_level,
			matched_signals,
			pages_visited,
			last_lead_score,
			escalated_at,
			started_at,
			updated_at
		FROM conversations
		WHERE id = :id
	`

	queryTouchConversation = `
		UPDATE conversations
		SET message_count = message_count + 1,
			question_count = question_count + :question_delta,
			objection_count = objection_count + :objection_delta,
			updated_at = :updated_at
		WHERE id = :id
	`

	querySetDisclosures = `
		UPDATE conversations
		SET company_name = COALESCE(NULLIF(company_name, ''), :company_name),
			budget_identified = COALESCE(NULLIF(budget_identified, ''), :budget_identified),
			timeline = COALESCE(NULLIF(timeline, ''), :timeline),
			use_case = COALESCE(NULLIF(use_case, ''), :use_case),
			authority_level = COALESCE(NULLIF(authority_level, ''), :authority_level),
			updated_at = :updated_at
		WHERE id = :id
	`

	queryAppendSignals = `
		UPDATE conversations
		SET matched_signals = (
				SELECT ARRAY(SELECT DISTINCT unnest(matched_signals || :signals))
			),
			pages_visited = CASE
				WHEN :page_url = '' OR :page_url = ANY(pages_visited) THEN pages_visited
				ELSE pages_visited || :page_url
			END,
			updated_at = :updated_at
		WHERE id = :id
	`

	querySetLeadScore = `
		UPDATE conversations
		SET last_lead_score = :score,
			updated_at = :updated_at
		WHERE id = :id
	`

	queryMarkEscalated = `
		UPDATE conversations
		SET escalated_at = :escalated_at,
			updated_at = :escalated_at
		WHERE id = :id
		  AND escalated_at IS NULL
	`

	queryCreateMessage = `
		INSERT INTO messages (
			id,
			conversation_id,
			role,
			content,
			intent,
			confidence,
			variant_id,
			created_at
		) VALUES (
			:id,
			:conversation_id,
			:role,
			:content,
			:intent,
			:confidence,
			:variant_id,
			:created_at
		)
	`

	queryGetMessagesByConversation = `
		SELECT
			id,
			conversation_id,
			role,
			content,
			intent,
			confidence,
			variant_id,
			created_at
		FROM messages
		WHERE conversation_id = :conversation_id
		ORDER BY created_at ASC
		LIMIT :limit
	`

	queryGetVisitorProfile = `
		SELECT
			id,
			name,
			company,
			industry,
			personality,
			is_returning,
			last_seen_at,
			created_at
		FROM visitor_profiles
		WHERE id = :id
	`

	queryUpsertVisitorProfile = `
		INSERT INTO visitor_profiles (
			id,
			name,
			company,
			industry,
			personality,
			is_returning,
			last_seen_at,
			created_at
		) VALUES (
			:id,
			:name,
			:company,
			:industry,
			:personality,
			:is_returning,
			:last_seen_at,
			:created_at
		)
		ON CONFLICT (id) DO UPDATE
		SET name = COALESCE(NULLIF(EXCLUDED.name, ''), visitor_profiles.name),
			company = COALESCE(NULLIF(EXCLUDED.company, ''), visitor_profiles.company),
			industry = COALESCE(NULLIF(EXCLUDED.industry, ''), visitor_profiles.industry),
			personality = COALESCE(NULLIF(EXCLUDED.personality, ''), visitor_profiles.personality),
			is_returning = TRUE,
			last_seen_at = EXCLUDED.last_seen_at
	`

	queryCreateReviewItem = `
		INSERT INTO review_queue (
			id,
			conversation_id,
			visitor_message,
			bot_response,
			detected_intent,
			confidence,
			reason,
			status,
			corrected_intent,
			corrected_response,
			reviewed_by,
			created_at
		) VALUES (
			:id,
			:conversation_id,
			:visitor_message,
			:bot_response,
			:detected_intent,
			:confidence,
			:reason,
			:status,
			:corrected_intent,
			:corrected_response,
			:reviewed_by,
			:created_at
		)
	`

	queryGetPendingReviews = `
		SELECT
			id,
			conversation_id,
			visitor_message,
			bot_response,
			detected_intent,
			confidence,
			reason,
			status,
			corrected_intent,
			corrected_response,
			reviewed_by,
			reviewed_at,
			created_at
		FROM review_queue
		WHERE status = :status
		ORDER BY created_at ASC
		LIMIT :limit OFFSET :offset
	`

	queryCountPendingReviews = `
		SELECT COUNT(*)
		FROM review_queue
		WHERE status = :status
	`

	queryGetReviewByID = `
		SELECT
			id,
			conversation_id,
			visitor_message,
			bot_response,
			detected_intent,
			confidence,
			reason,
			status,
			corrected_intent,
			corrected_response,
			reviewed_by,
			reviewed_at,
			created_at
		FROM review_queue
		WHERE id = :id
	`

	queryUpdateReview = `
		UPDATE review_queue
		SET status = :status,
			corrected_intent = :corrected_intent,
			corrected_response = :corrected_response,
			reviewed_by = :reviewed_by,
			reviewed_at = :reviewed_at
		WHERE id = :id
		  AND status = 'pending'
	`

	queryCreateEscalation = `
		INSERT INTO escalations (
			id,
			conversation_id,
			reason,
			lead_score,
			created_at
		) VALUES (
			:id,
			:conversation_id,
			:reason,
			:lead_score,
			:created_at
		)
	`
)
