package enrich

// MetadataPrompt asks for line count, language and tags. Argument: post text.
const MetadataPrompt = `You are given a LinkedIn post. Extract the following details:
1. Return a valid JSON. No preamble.
2. JSON should have exactly three keys: line_count, language, and tags.
3. tags is an array of text tags. Extract a maximum of two tags.
4. Language should be either "English" or "Hinglish" (Hindi + English).

Post:
%s`

// UnifyTagsPrompt asks for a mapping of original to unified tags.
// Argument: comma separated tags.
const UnifyTagsPrompt = `Unify the following tags:
1. Merge similar tags into a single unified tag (e.g., "Jobseekers" and "Job Hunting" -> "Job Search").
2. Each tag should use Title Case.
3. Return a JSON object mapping original tags to unified tags (e.g., {"Jobseekers": "Job Search", "Motivation": "Motivation"}).
4. No preamble.

Tags:
%s`
