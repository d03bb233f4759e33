package twitter

// DOM selectors for the rendered timeline. X ships data-testid attributes on
// its timeline components; they survive redesigns far better than class names.
const (
	// SelectorTweet matches one rendered post article
	SelectorTweet = `article[data-testid="tweet"]`

	// SelectorEmptyState matches the marker X renders when an account does
	// not exist or has no visible timeline
	SelectorEmptyState = `[data-testid="emptyState"]`

	// SelectorReady matches whichever of post or empty-state renders first,
	// used for the initial readiness wait
	SelectorReady = SelectorTweet + ", " + SelectorEmptyState

	// SelectorSocialContext matches the banner X renders above pinned posts
	// and reposts. Reposts never survive the authorship check, so a
	// validated candidate carrying this marker is pinned.
	SelectorSocialContext = `[data-testid="socialContext"]`

	// SelectorTweetText matches the text body inside a post article
	SelectorTweetText = `[data-testid="tweetText"]`

	// SelectorTweetPhoto matches embedded media images inside a post article
	SelectorTweetPhoto = `[data-testid="tweetPhoto"] img`
)

// ExtractionScript is evaluated in the page to read every currently rendered
// post in one round trip. It returns a JSON array of RawCandidate objects;
// validation happens Go-side in ParseCandidate. Avatar images live under
// profile_images on the media CDN and are filtered out here.
const ExtractionScript = `() => {
	const articles = Array.from(document.querySelectorAll('article[data-testid="tweet"]'));
	const candidates = articles.map((article) => {
		const time = article.querySelector('time');
		const link = time ? time.closest('a[href*="/status/"]') : null;
		const text = article.querySelector('[data-testid="tweetText"]');
		const images = Array.from(article.querySelectorAll('[data-testid="tweetPhoto"] img'))
			.map((img) => img.currentSrc || img.src)
			.filter((src) => src && !src.includes('profile_images'));
		return {
			permalink: link ? link.getAttribute('href') : '',
			datetime: time ? time.getAttribute('datetime') : '',
			text: text ? text.innerText : '',
			images: images,
			pinned: !!article.querySelector('[data-testid="socialContext"]'),
		};
	});
	return JSON.stringify(candidates);
}`
