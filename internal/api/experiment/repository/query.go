package experimentRepository

const (
	queryCreateVariant = `
		INSERT INTO message_variants (
			id,
			scenario_key,
			name,
			template,
			times_shown,
			responses_received,
			positive_responses,
			conversions,
			avg_score_delta,
			is_control,
			is_winner,
			confidence_level,
			is_active,
			created_at,
			updated_at
		) VALUES (
			:id,
			:scenario_key,
			:name,
			:template,
			:times_shown,
			:responses_received,
			:positive_responses,
			:conversions,
			:avg_score_delta,
			:is_control,
			:is_winner,
			:confidence_level,
			:is_active,
			:created_at,
			:updated_at
		)
	`

	queryGetVariantByID = `
		SELECT
			id,
			scenario_key,
			name,
			template,
			times_shown,
			responses_received,
			positive_responses,
			conversions,
			avg_score_delta,
			is_control,
			is_winner,
			confidence_level,
			is_active,
			created_at,
			updated_at
		FROM message_variants
		WHERE id = :id
	`

	queryGetActiveByScenario = `
		SELECT
			id,
			scenario_key,
			name,
			template,
			times_shown,
			responses_received,
			positive_responses,
			conversions,
			avg_score_delta,
			is_control,
			is_winner,
			confidence_level,
			is_active,
			created_at,
			updated_at
		FROM message_variants
		WHERE scenario_key = :scenario_key
		  AND is_active = TRUE
		ORDER BY created_at ASC
	`

	queryGetScenarioKeys = `
		SELECT DISTINCT scenario_key
		FROM message_variants
		WHERE is_active = TRUE
		ORDER BY scenario_key ASC
	`

	queryGetAllVariants = `
		SELECT
			id,
			scenario_key,
			name,
			template,
			times_shown,
			responses_received,
			positive_responses,
			conversions,
			avg_score_delta,
			is_control,
			is_winner,
			confidence_level,
			is_active,
			created_at,
			updated_at
		FROM message_variants
		ORDER BY scenario_key ASC, created_at ASC
		LIMIT :limit OFFSET :offset
	`

	queryCountAllVariants = `
		SELECT COUNT(*)
		FROM message_variants
	`

	queryIncrementCounters = `
		UPDATE message_variants
		SET times_shown = times_shown + :shown,
			responses_received = responses_received + :responses,
			positive_responses = positive_responses + :positives,
			conversions = conversions + :conversions,
			avg_score_delta = CASE
				WHEN :has_score_delta
					THEN avg_score_delta + ((:score_delta - avg_score_delta) / (responses_received + 1))
				ELSE avg_score_delta
			END,
			updated_at = :updated_at
		WHERE id = :id
	`

	querySetSignificance = `
		UPDATE message_variants
		SET confidence_level = :confidence_level,
			is_winner = :is_winner,
			updated_at = :updated_at
		WHERE id = :id
	`

	queryDemoteControl = `
		UPDATE message_variants
		SET is_control = FALSE,
			updated_at = :updated_at
		WHERE scenario_key = :scenario_key
		  AND is_control = TRUE
	`

	queryPromoteVariant = `
		UPDATE message_variants
		SET is_control = TRUE,
			is_winner = TRUE,
			updated_at = :updated_at
		WHERE id = :id
	`

	queryCreateInteraction = `
		INSERT INTO variant_interactions (
			id,
			variant_id,
			conversation_id,
			responded,
			positive,
			converted,
			score_delta,
			created_at
		) VALUES (
			:id,
			:variant_id,
			:conversation_id,
			:responded,
			:positive,
			:converted,
			:score_delta,
			:created_at
		)
	`
)
