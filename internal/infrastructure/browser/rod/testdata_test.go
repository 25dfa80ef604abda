package rod

const (
	basicHTML = `<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
	<h1>Hello World</h1>
</body>
</html>`

	formHTML = `<!DOCTYPE html>
<html>
<body>
	<input id="username" type="text" name="username" />
	<input id="readonly" type="text" value="fixed" readonly />
	<textarea id="notes"></textarea>
	<div id="label">Just text</div>
	<div id="submitted"></div>
	<script>
		document.getElementById('username').addEventListener('keydown', function(e) {
			if (e.key === 'Enter') {
				document.getElementById('submitted').textContent = this.value;
			}
		});
	</script>
</body>
</html>`

	interactiveHTML = `<!DOCTYPE html>
<html>
<body>
	<button id="btn">Click Me</button>
	<button id="hidden" style="display:none">Hidden</button>
	<div id="result"></div>
	<script>
		document.getElementById('btn').addEventListener('click', function() {
			document.getElementById('result').textContent = 'Clicked!';
		});
	</script>
</body>
</html>`

	scrollableHTML = `<!DOCTYPE html>
<html>
<body style="height: 5000px;">
	<h1 id="top">Top of Page</h1>
	<div style="margin-top: 2000px;" id="middle">Middle</div>
	<div style="margin-top: 2000px;" id="bottom">Bottom</div>
</body>
</html>`
)
