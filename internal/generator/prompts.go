package generator

// PostPrompt is the instruction template. Arguments: topic, length
// description, language.
const PostPrompt = `Generate a LinkedIn post using the following details. No preamble:

1) Topic: %s
2) Length: %s
3) Language: %s

If Language is Hinglish, it means a mix of Hindi and English. The script for the post should always be in English.`

// StyleGuideHeading introduces the few-shot examples.
const StyleGuideHeading = "\n\n4) Use the following examples as a guide for writing style:"

// ExampleBlock renders one numbered example. Arguments: number, text.
const ExampleBlock = "\n\nExample %d:\n%s"
