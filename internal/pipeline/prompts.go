package pipeline

// transcribeInstruction asks the model for a verbatim transcript with no
// commentary around it.
const transcribeInstruction = `Generate a complete, detailed transcript of this audio. Output only the spoken words, with sensible punctuation. Do not add commentary, speaker labels, or timestamps.`

// polishInstruction rewrites a raw transcript into a tidy markdown note.
const polishInstruction = `Take this raw transcription of a voice note and create a polished, well-formatted version.

Remove filler words (um, uh, like), repetitions, and false starts. Correct obvious speech-to-text mistakes when the intended word is clear from context. Preserve the speaker's meaning, details, and tone.

Format the result as markdown: use a single "# " heading that names the note, paragraphs for prose, and lists where the speaker enumerates items. Output only the polished note, with no preamble.`
